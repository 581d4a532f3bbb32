package storage

// Field lookup priority per logical attribute. The upstream CRM exports
// have no enforced schema and several key spellings are in circulation,
// so each logical attribute is resolved through an ordered key list.
var (
	statusKeys        = []string{"Deal Stage", "Status", "status"}
	regionKeys        = []string{"Countries", "Regions", "Country"}
	merchantNameKeys  = []string{"Merchant", "Name", "name"}
	publisherNameKeys = []string{"Network_Publishers", "Publisher", "Name"}
)

// Status returns the record's status value, or "".
func (r EntityRecord) Status() string {
	return r.FirstString(statusKeys...)
}

// RegionText returns the record's free-text countries/regions value, or
// "". Parse it with lexicon.ParseRegions; never compare it directly.
func (r EntityRecord) RegionText() string {
	return r.FirstString(regionKeys...)
}

// DisplayName returns the record's display name for the given collection
// ("Merchants" or "Publishers"), or "".
func (r EntityRecord) DisplayName(collection string) string {
	if collection == "Publishers" {
		return r.FirstString(publisherNameKeys...)
	}
	return r.FirstString(merchantNameKeys...)
}
