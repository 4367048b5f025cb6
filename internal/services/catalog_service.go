package services

import (
	"errors"
	"strings"

	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/store"
)

var ErrDoctorNotFound = errors.New("doctor not found")

// CatalogService reads the seed collections: cities, hospitals and doctors.
type CatalogService struct {
	store *store.Store
}

func NewCatalogService(s *store.Store) *CatalogService {
	return &CatalogService{store: s}
}

func (s *CatalogService) Cities() []models.City {
	return s.store.Cities.Load()
}

func (s *CatalogService) HospitalsByCity(cityID string) []models.Hospital {
	return s.store.Hospitals.Filter(func(h models.Hospital) bool { return h.CityID == cityID })
}

func (s *CatalogService) DoctorsByHospital(hospitalID string) []models.Doctor {
	return s.store.Doctors.Filter(func(d models.Doctor) bool { return d.HospitalID == hospitalID })
}

func (s *CatalogService) Doctors() []models.Doctor {
	return s.store.Doctors.Load()
}

func (s *CatalogService) City(id string) (*models.City, bool) {
	if id == "" {
		return nil, false
	}
	c, ok := s.store.Cities.FindByField("id", id)
	if !ok {
		return nil, false
	}
	return &c, true
}

func (s *CatalogService) Hospital(id string) (*models.Hospital, bool) {
	if id == "" {
		return nil, false
	}
	h, ok := s.store.Hospitals.FindByField("id", id)
	if !ok {
		return nil, false
	}
	return &h, true
}

// SearchDoctors matches query case-insensitively against name and
// specialization. An empty query returns every doctor.
func (s *CatalogService) SearchDoctors(query string) []dto.DoctorView {
	query = strings.ToLower(strings.TrimSpace(query))

	hospitals := make(map[string]models.Hospital)
	for _, h := range s.store.Hospitals.Load() {
		hospitals[h.ID] = h
	}
	cities := make(map[string]models.City)
	for _, c := range s.store.Cities.Load() {
		cities[c.ID] = c
	}

	views := make([]dto.DoctorView, 0)
	for _, d := range s.store.Doctors.Load() {
		if query != "" &&
			!strings.Contains(strings.ToLower(d.Name), query) &&
			!strings.Contains(strings.ToLower(d.Specialization), query) {
			continue
		}
		view := dto.DoctorView{Doctor: d}
		if h, ok := hospitals[d.HospitalID]; ok {
			view.HospitalName = h.Name
			if c, ok := cities[h.CityID]; ok {
				view.CityName = c.Name
			}
		}
		views = append(views, view)
	}
	return views
}

// Doctor returns the doctor with the hospital and city it practices in, when
// known.
func (s *CatalogService) Doctor(id string) (*dto.DoctorDetailResponse, error) {
	d, ok := s.store.Doctors.FindByField("id", id)
	if !ok {
		return nil, ErrDoctorNotFound
	}
	resp := &dto.DoctorDetailResponse{Doctor: d}
	if h, ok := s.Hospital(d.HospitalID); ok {
		resp.Hospital = h
		if c, ok := s.City(h.CityID); ok {
			resp.City = c
		}
	}
	return resp, nil
}
