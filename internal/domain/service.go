package domain

type ServiceStatus string

const (
	ServiceAvailable   ServiceStatus = "available"
	ServiceUnavailable ServiceStatus = "unavailable"
)

// FieldType identifies the content type of a task field.
type FieldType string

const (
	FieldImagePNG  FieldType = "image/png"
	FieldImageJPEG FieldType = "image/jpeg"
	FieldJSON      FieldType = "application/json"
)

// FieldDescription declares one named input or output field of the service.
type FieldDescription struct {
	Name  string      `json:"name"`
	Types []FieldType `json:"type"`
}

type ServiceTag struct {
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
}

// ServiceDescriptor is the registration payload announced to engines.
type ServiceDescriptor struct {
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	URL           string             `json:"url"`
	Summary       string             `json:"summary"`
	Description   string             `json:"description"`
	Status        ServiceStatus      `json:"status"`
	DataInFields  []FieldDescription `json:"data_in_fields"`
	DataOutFields []FieldDescription `json:"data_out_fields"`
	Tags          []ServiceTag       `json:"tags"`
	HasAI         bool               `json:"has_ai"`
	DocsURL       string             `json:"docs_url,omitempty"`
}
