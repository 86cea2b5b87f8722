package places

// TextSearchResponse represents the Google Places Text Search API response
type TextSearchResponse struct {
	Results       []PlaceResult `json:"results"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// PlaceResult represents a single place result from the text search.
// Rating and UserRatingsTotal are pointers so an unrated place is
// distinguishable from a zero value.
type PlaceResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// DetailsResponse represents the Place Details API response, requested with
// fields=website only.
type DetailsResponse struct {
	Result       DetailsResult `json:"result"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// DetailsResult holds the single supplementary field we ask for
type DetailsResult struct {
	Website string `json:"website,omitempty"`
}
