package models

// City, Hospital and Doctor are seed data; the application only reads them.

type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Hospital struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CityID  string `json:"city_id"`
	Address string `json:"address,omitempty"`
}

type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	HospitalID     string `json:"hospital_id,omitempty"`
	Experience     int    `json:"experience,omitempty"`
	Qualification  string `json:"qualification,omitempty"`
	Fee            int    `json:"fee,omitempty"`
}
