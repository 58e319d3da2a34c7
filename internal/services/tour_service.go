package services

import (
	"sort"
	"strings"

	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatsMinRating - порог tour-stats
const StatsMinRating = 4.5

type TourService interface {
	CreateTour(db *gorm.DB, req *dto.CreateTourRequest) (*dto.TourResponse, error)
	GetTour(db *gorm.DB, id string) (*dto.TourResponse, error)
	ListTours(db *gorm.DB, q *query.Query) ([]*dto.TourResponse, error)
	UpdateTour(db *gorm.DB, id string, req *dto.UpdateTourRequest) (*dto.TourResponse, error)
	DeleteTour(db *gorm.DB, id string) error

	Stats(db *gorm.DB) ([]repositories.TourStats, error)
	MonthlyPlan(db *gorm.DB, year int) ([]dto.MonthlyPlanEntry, error)
	ToursWithin(db *gorm.DB, distance float64, center dto.GeoQuery) ([]*dto.TourResponse, error)
	Distances(db *gorm.DB, center dto.GeoQuery) ([]dto.TourDistance, error)
}

type TourServiceImpl struct {
	tourRepo repositories.TourRepository
	userRepo repositories.UserRepository
}

func NewTourService(tourRepo repositories.TourRepository, userRepo repositories.UserRepository) TourService {
	return &TourServiceImpl{
		tourRepo: tourRepo,
		userRepo: userRepo,
	}
}

var errTourNameTaken = apperrors.ValidationError(map[string]string{"name": "A tour with this name already exists"})

func (s *TourServiceImpl) CreateTour(db *gorm.DB, req *dto.CreateTourRequest) (*dto.TourResponse, error) {
	if req.PriceDiscount != nil && *req.PriceDiscount >= req.Price {
		return nil, discountError()
	}
	guides, err := s.resolveGuides(db, req.Guides)
	if err != nil {
		return nil, err
	}

	tour := &models.Tour{
		Name:           strings.TrimSpace(req.Name),
		Duration:       req.Duration,
		MaxGroupSize:   req.MaxGroupSize,
		Difficulty:     req.Difficulty,
		Price:          req.Price,
		PriceDiscount:  req.PriceDiscount,
		Summary:        strings.TrimSpace(req.Summary),
		Description:    strings.TrimSpace(req.Description),
		ImageCover:     req.ImageCover,
		RatingsAverage: models.DefaultRatingsAverage,
		Images:         datatypes.NewJSONSlice(nonNil(req.Images)),
		StartDates:     datatypes.NewJSONSlice(nonNil(req.StartDates)),
		Locations:      datatypes.NewJSONSlice(nonNil(req.Locations)),
		SecretTour:     req.SecretTour,
	}
	tour.Slug = models.Slugify(tour.Name)
	if req.StartLocation != nil {
		point, err := normalizePoint(*req.StartLocation)
		if err != nil {
			return nil, err
		}
		tour.StartLocation = datatypes.NewJSONType(point)
	}

	if err := s.tourRepo.Create(db, tour); err != nil {
		if apperrors.Is(err, repositories.ErrTourAlreadyExists) {
			return nil, errTourNameTaken
		}
		return nil, apperrors.InternalError(err)
	}

	if len(guides) > 0 {
		if err := s.tourRepo.ReplaceGuides(db, tour, guides); err != nil {
			return nil, apperrors.InternalError(err)
		}
		tour.Guides = guides
	}
	return dto.NewTourResponse(tour), nil
}

func (s *TourServiceImpl) GetTour(db *gorm.DB, id string) (*dto.TourResponse, error) {
	tour, err := s.tourRepo.FindByID(db, id, true)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTourNotFound) {
			return nil, apperrors.NotFound("tour")
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewTourResponse(tour), nil
}

func (s *TourServiceImpl) ListTours(db *gorm.DB, q *query.Query) ([]*dto.TourResponse, error) {
	tours, err := s.tourRepo.FindAll(db, q)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewTourResponses(tours), nil
}

func (s *TourServiceImpl) UpdateTour(db *gorm.DB, id string, req *dto.UpdateTourRequest) (*dto.TourResponse, error) {
	current, err := s.tourRepo.FindByID(db, id, false)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTourNotFound) {
			return nil, apperrors.NotFound("tour")
		}
		return nil, apperrors.InternalError(err)
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		fields["name"] = name
		fields["slug"] = models.Slugify(name)
	}
	if req.Duration != nil {
		fields["duration"] = *req.Duration
	}
	if req.MaxGroupSize != nil {
		fields["max_group_size"] = *req.MaxGroupSize
	}
	if req.Difficulty != nil {
		fields["difficulty"] = *req.Difficulty
	}

	price := current.Price
	if req.Price != nil {
		price = *req.Price
		fields["price"] = price
	}
	discount := current.PriceDiscount
	if req.PriceDiscount != nil {
		discount = req.PriceDiscount
		fields["price_discount"] = *req.PriceDiscount
	}
	if discount != nil && *discount >= price {
		return nil, discountError()
	}

	if req.Summary != nil {
		fields["summary"] = strings.TrimSpace(*req.Summary)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.ImageCover != nil {
		fields["image_cover"] = *req.ImageCover
	}
	if req.Images != nil {
		fields["images"] = datatypes.NewJSONSlice(req.Images)
	}
	if req.StartDates != nil {
		fields["start_dates"] = datatypes.NewJSONSlice(req.StartDates)
	}
	if req.Locations != nil {
		fields["locations"] = datatypes.NewJSONSlice(req.Locations)
	}
	if req.StartLocation != nil {
		point, err := normalizePoint(*req.StartLocation)
		if err != nil {
			return nil, err
		}
		fields["start_location"] = datatypes.NewJSONType(point)
	}

	if len(fields) > 0 {
		if err := s.tourRepo.UpdateFields(db, id, fields); err != nil {
			switch {
			case apperrors.Is(err, repositories.ErrTourAlreadyExists):
				return nil, errTourNameTaken
			case apperrors.Is(err, repositories.ErrTourNotFound):
				return nil, apperrors.NotFound("tour")
			}
			return nil, apperrors.InternalError(err)
		}
	}

	if req.Guides != nil {
		guides, err := s.resolveGuides(db, req.Guides)
		if err != nil {
			return nil, err
		}
		if err := s.tourRepo.ReplaceGuides(db, current, guides); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return s.GetTour(db, id)
}

func (s *TourServiceImpl) DeleteTour(db *gorm.DB, id string) error {
	if err := s.tourRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrTourNotFound) {
			return apperrors.NotFound("tour")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *TourServiceImpl) Stats(db *gorm.DB) ([]repositories.TourStats, error) {
	stats, err := s.tourRepo.Stats(db, StatsMinRating)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return stats, nil
}

// MonthlyPlan считает старты туров по месяцам года, самые загруженные месяцы первыми
func (s *TourServiceImpl) MonthlyPlan(db *gorm.DB, year int) ([]dto.MonthlyPlanEntry, error) {
	tours, err := s.tourRepo.FindAllVisible(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	byMonth := make(map[int]*dto.MonthlyPlanEntry)
	for _, tour := range tours {
		for _, start := range tour.StartDates {
			start = start.UTC()
			if start.Year() != year {
				continue
			}
			month := int(start.Month())
			entry, ok := byMonth[month]
			if !ok {
				entry = &dto.MonthlyPlanEntry{Month: month, Tours: []string{}}
				byMonth[month] = entry
			}
			entry.NumTourStarts++
			entry.Tours = append(entry.Tours, tour.Name)
		}
	}

	plan := make([]dto.MonthlyPlanEntry, 0, len(byMonth))
	for _, entry := range byMonth {
		plan = append(plan, *entry)
	}
	sort.Slice(plan, func(i, j int) bool {
		if plan[i].NumTourStarts != plan[j].NumTourStarts {
			return plan[i].NumTourStarts > plan[j].NumTourStarts
		}
		return plan[i].Month < plan[j].Month
	})
	return plan, nil
}

func (s *TourServiceImpl) ToursWithin(db *gorm.DB, distance float64, center dto.GeoQuery) ([]*dto.TourResponse, error) {
	if distance <= 0 {
		return nil, apperrors.NewBadRequestError("Distance must be a positive number.")
	}
	tours, err := s.tourRepo.FindAllVisible(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	within := make([]models.Tour, 0)
	for _, tour := range tours {
		point := tour.StartLocation.Data()
		if !point.Valid() {
			continue
		}
		if haversine(center.Lat, center.Lng, point.Lat(), point.Lng(), center.Unit) <= distance {
			within = append(within, tour)
		}
	}
	return dto.NewTourResponses(within), nil
}

// Distances - расстояние до каждого тура с известной точкой старта, ближайшие первыми
func (s *TourServiceImpl) Distances(db *gorm.DB, center dto.GeoQuery) ([]dto.TourDistance, error) {
	tours, err := s.tourRepo.FindAllVisible(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.TourDistance, 0, len(tours))
	for _, tour := range tours {
		point := tour.StartLocation.Data()
		if !point.Valid() {
			continue
		}
		out = append(out, dto.TourDistance{
			ID:       tour.ID,
			Name:     tour.Name,
			Distance: haversine(center.Lat, center.Lng, point.Lat(), point.Lng(), center.Unit),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// resolveGuides: все id должны принадлежать активным гидам
func (s *TourServiceImpl) resolveGuides(db *gorm.DB, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	users, err := s.userRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(users) != len(unique) {
		return nil, apperrors.ValidationError(map[string]string{"guides": "Unknown guide id"})
	}
	for _, u := range users {
		if !u.Role.IsGuide() {
			return nil, apperrors.ValidationError(map[string]string{"guides": "User " + u.ID + " is not a guide"})
		}
	}
	return users, nil
}

func normalizePoint(p models.GeoPoint) (models.GeoPoint, error) {
	if !p.Valid() {
		return p, apperrors.ValidationError(map[string]string{"startLocation": "Coordinates must be [lng, lat]"})
	}
	if p.Type == "" {
		p.Type = "Point"
	}
	return p, nil
}

func discountError() error {
	return apperrors.ValidationError(map[string]string{"priceDiscount": "Discount price should be below the regular price"})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
