package models

// RecommendationRequest is the body of POST /recommendations
type RecommendationRequest struct {
	CropName string `json:"crop_name" validate:"required"`
	District string `json:"district" validate:"required"`
}

// Recommendation is one company able to use a crop's by-products
type Recommendation struct {
	CompanyName string  `json:"company_name"`
	Address     string  `json:"address"`
	Status      string  `json:"status"`
	Domain      string  `json:"domain"`
	Distance    float64 `json:"distance"`
	Rating      float64 `json:"rating"`
}

// RecommendationsResponse carries between one and ten recommendations
type RecommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// MessageResponse reports a valid crop with no matching companies
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse reports an unknown crop or a rejected request
type ErrorResponse struct {
	Error string `json:"error"`
}

// InfoResponse describes the running service
type InfoResponse struct {
	Version    string `json:"version"`
	Source     string `json:"source"`
	Byproducts int    `json:"byproducts"`
	Companies  int    `json:"companies"`
	Districts  int    `json:"districts"`
}
