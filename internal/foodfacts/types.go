package foodfacts

// ProductResponse is the raw API response from the product endpoint.
type ProductResponse struct {
	Code          string   `json:"code"`
	Status        int      `json:"status"`
	StatusVerbose string   `json:"status_verbose"`
	Product       *Product `json:"product"`
}

// Product is the subset of an Open Food Facts product we read.
type Product struct {
	ProductName string     `json:"product_name"`
	Brands      string     `json:"brands"`
	ServingSize string     `json:"serving_size"`
	Nutriments  Nutriments `json:"nutriments"`
}

// Nutriments holds per-100g values. Absent fields decode as zero.
type Nutriments struct {
	EnergyKcal100g    float64 `json:"energy-kcal_100g"`
	Proteins100g      float64 `json:"proteins_100g"`
	Carbohydrates100g float64 `json:"carbohydrates_100g"`
	Fat100g           float64 `json:"fat_100g"`
	Sugars100g        float64 `json:"sugars_100g"`
}
