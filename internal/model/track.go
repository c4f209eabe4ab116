package model

// TrackRecord is a normalized, flattened representation of one catalog
// search hit. The catalog client maps the provider's nested response
// (artists array, album object, image list) down to this flat shape:
//
//   - Artists is the display names joined with ", "
//   - AlbumImage is the first album image URL, or "" if the album has none
//   - ExternalURL is the canonical link back to the track on the provider
//
// A TrackRecord is not stored server-side between the search and commit
// steps of the import flow — it is serialized into an opaque payload,
// round-tripped through the client, and decoded back on commit.
type TrackRecord struct {
	Title       string `json:"title"`
	CatalogID   string `json:"catalogId"`
	AlbumName   string `json:"albumName"`
	AlbumImage  string `json:"albumImage"`
	Artists     string `json:"artists"`
	ExternalURL string `json:"externalUrl"`
}
