package services

import (
	"strings"

	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
)

type symptomEntry struct {
	symptom         string
	specializations []string
}

// symptomTable is ordered so results are stable.
var symptomTable = []symptomEntry{
	{"fever", []string{"General Physician", "Pediatrician"}},
	{"chest pain", []string{"Cardiologist", "General Physician"}},
	{"heart problems", []string{"Cardiologist"}},
	{"breathing difficulty", []string{"Cardiologist", "General Physician"}},
	{"skin rash", []string{"Dermatologist"}},
	{"acne", []string{"Dermatologist"}},
	{"skin problems", []string{"Dermatologist"}},
	{"hair loss", []string{"Dermatologist"}},
	{"anxiety", []string{"Psychiatrist"}},
	{"depression", []string{"Psychiatrist"}},
	{"stress", []string{"Psychiatrist"}},
	{"mental health", []string{"Psychiatrist"}},
	{"back pain", []string{"Orthopedic Surgeon", "General Physician"}},
	{"joint pain", []string{"Orthopedic Surgeon"}},
	{"bone fracture", []string{"Orthopedic Surgeon"}},
	{"knee pain", []string{"Orthopedic Surgeon"}},
	{"headache", []string{"Neurologist", "General Physician"}},
	{"migraine", []string{"Neurologist"}},
	{"seizures", []string{"Neurologist"}},
	{"numbness", []string{"Neurologist"}},
	{"child fever", []string{"Pediatrician"}},
	{"child cough", []string{"Pediatrician"}},
	{"vaccination", []string{"Pediatrician"}},
	{"pregnancy", []string{"Gynecologist"}},
	{"menstrual problems", []string{"Gynecologist"}},
	{"womens health", []string{"Gynecologist"}},
	{"cold", []string{"General Physician"}},
	{"cough", []string{"General Physician"}},
	{"diabetes", []string{"General Physician"}},
	{"blood pressure", []string{"General Physician", "Cardiologist"}},
}

type causeEntry struct {
	symptom string
	causes  []string
}

var causeTable = []causeEntry{
	{"fever", []string{"Viral infection", "Bacterial infection", "Flu", "COVID-19"}},
	{"chest pain", []string{"Heart disease", "Anxiety", "Muscle strain", "Acid reflux"}},
	{"skin rash", []string{"Allergic reaction", "Eczema", "Contact dermatitis", "Fungal infection"}},
	{"anxiety", []string{"Stress", "Depression", "Panic disorder", "PTSD"}},
	{"back pain", []string{"Muscle strain", "Poor posture", "Herniated disk", "Arthritis"}},
	{"headache", []string{"Tension", "Migraine", "Dehydration", "Eye strain"}},
	{"cough", []string{"Cold", "Flu", "Allergies", "Asthma"}},
	{"joint pain", []string{"Arthritis", "Injury", "Overuse", "Infection"}},
}

var defaultCauses = []string{"Please consult a doctor for accurate diagnosis"}

// SymptomService suggests specializations and doctors for a free-text
// symptom.
type SymptomService struct {
	catalog *CatalogService
}

func NewSymptomService(catalog *CatalogService) *SymptomService {
	return &SymptomService{catalog: catalog}
}

// Symptoms lists the symptoms the finder knows about.
func (s *SymptomService) Symptoms() []string {
	out := make([]string, 0, len(symptomTable))
	for _, e := range symptomTable {
		out = append(out, e.symptom)
	}
	return out
}

// matches holds when either string contains the other.
func matches(key, input string) bool {
	return strings.Contains(input, key) || strings.Contains(key, input)
}

// Match maps a symptom to specializations and the doctors practising them.
// With no matching doctor every doctor is suggested; with no matching
// specialization, general physicians are, or everyone when there are none.
func (s *SymptomService) Match(symptom string) dto.SymptomResponse {
	input := strings.ToLower(strings.TrimSpace(symptom))
	resp := dto.SymptomResponse{
		Symptom:         input,
		Specializations: []string{},
		PossibleCauses:  []string{},
		Doctors:         []models.Doctor{},
	}
	if input == "" {
		return resp
	}

	seen := make(map[string]bool)
	for _, e := range symptomTable {
		if !matches(e.symptom, input) {
			continue
		}
		for _, spec := range e.specializations {
			if !seen[spec] {
				seen[spec] = true
				resp.Specializations = append(resp.Specializations, spec)
			}
		}
	}

	all := s.catalog.Doctors()
	if len(resp.Specializations) > 0 {
		for _, d := range all {
			if seen[d.Specialization] {
				resp.Doctors = append(resp.Doctors, d)
			}
		}
		resp.PossibleCauses = possibleCauses(input)
		if len(resp.Doctors) == 0 {
			resp.Notice = "No doctors found for this symptom. Showing all doctors."
			resp.Doctors = append(resp.Doctors, all...)
		}
		return resp
	}

	resp.Notice = "No specific specialization found. Showing general physicians."
	for _, d := range all {
		if strings.Contains(strings.ToLower(d.Specialization), "general") {
			resp.Doctors = append(resp.Doctors, d)
		}
	}
	if len(resp.Doctors) == 0 {
		resp.Doctors = append(resp.Doctors, all...)
	}
	return resp
}

func possibleCauses(input string) []string {
	for _, e := range causeTable {
		if matches(e.symptom, input) {
			return append([]string(nil), e.causes...)
		}
	}
	return append([]string(nil), defaultCauses...)
}
