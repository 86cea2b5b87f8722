package models

// ProviderPlace is one raw result from the places provider's text search.
// Rating and UserRatingsTotal are pointers so an unrated place is
// distinguishable from a zero rating.
type ProviderPlace struct {
	PlaceID          string
	Name             string
	Rating           *float64
	UserRatingsTotal *int
}

// ProviderPage is one raw page of text-search results plus the provider's
// continuation token, empty when no further pages exist.
type ProviderPage struct {
	Places        []ProviderPlace
	NextPageToken string
}
