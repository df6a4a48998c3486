package tariff

import "strings"

// matchRule decides which records serve a station of a jurisdiction.
type matchRule struct {
	regionContains string
	byCity         bool
}

// Jurisdictions whose tariff tables are published per city.
var matchRules = []matchRule{
	{regionContains: "广东", byCity: true},
}

// Match returns the first record applicable to a station in region/city
// billed under scheme. Stations of city-level jurisdictions match on city
// first and fall back to the region-wide record.
func Match(records []Record, region, city string, scheme Scheme) (Record, bool) {
	city = strings.TrimSpace(city)
	for _, rule := range matchRules {
		if !strings.Contains(region, rule.regionContains) || !rule.byCity {
			continue
		}
		for _, record := range records {
			if record.Region == region && record.Scheme == scheme && record.City == city {
				return record, true
			}
		}
		break
	}
	for _, record := range records {
		if record.Region == region && record.Scheme == scheme {
			return record, true
		}
	}
	return Record{}, false
}

// Key identifies a record for persistence.
func (r Record) Key() string {
	return r.Region + "|" + string(r.Scheme) + "|" + r.City
}
