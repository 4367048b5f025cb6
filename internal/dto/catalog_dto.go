package dto

import "github.com/akshalkotian/doctorappointment/internal/models"

type DoctorView struct {
	models.Doctor
	HospitalName string `json:"hospital_name,omitempty"`
	CityName     string `json:"city_name,omitempty"`
}

type DoctorDetailResponse struct {
	Doctor   models.Doctor    `json:"doctor"`
	Hospital *models.Hospital `json:"hospital,omitempty"`
	City     *models.City     `json:"city,omitempty"`
}

type SymptomRequest struct {
	Symptom string `json:"symptom" validate:"required,max=200"`
}

type SymptomResponse struct {
	Symptom         string          `json:"symptom"`
	Specializations []string        `json:"recommended_specializations"`
	PossibleCauses  []string        `json:"possible_causes"`
	Doctors         []models.Doctor `json:"recommended_doctors"`
	Notice          string          `json:"notice,omitempty"`
}

type SymptomListResponse struct {
	Symptoms []string `json:"symptoms"`
}
