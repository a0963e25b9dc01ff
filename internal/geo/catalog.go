// Package geo holds the built-in target pools used when a map client does not
// supply its own feature list.
package geo

import (
	"context"
	"sort"
	"strings"

	"geoplay-service/internal/domain"
)

// nonPlayable lists features drawn on the map that are never asked.
var nonPlayable = map[domain.Mode]map[string]struct{}{
	domain.ModeCountry: {"Antarctica": {}},
}

// Playable drops features that should not be asked in the given mode.
func Playable(mode domain.Mode, targets []domain.Target) []domain.Target {
	skip := nonPlayable[mode]
	out := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		if _, ok := skip[t.Name]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Regions lists the countries whose states can be played in state mode.
func Regions() []domain.Region {
	return []domain.Region{
		{ID: "usa", Name: "USA"},
		{ID: "india", Name: "India"},
	}
}

// Catalog is a static, in-memory pool source.
type Catalog struct {
	pools map[string][]domain.Target
}

// NewCatalog returns the built-in pools.
func NewCatalog() *Catalog {
	return &Catalog{pools: map[string][]domain.Target{
		poolKey(domain.ModeCountry, ""):    countries(),
		poolKey(domain.ModeState, "usa"):   names("usa", usStates),
		poolKey(domain.ModeState, "india"): names("india", indianStates),
		poolKey(domain.ModeCity, ""):       cities(),
	}}
}

// NewCatalogFrom builds a catalog from explicit pools keyed by mode and region.
func NewCatalogFrom(pools map[domain.Mode]map[string][]domain.Target) *Catalog {
	c := &Catalog{pools: make(map[string][]domain.Target)}
	for mode, byRegion := range pools {
		for region, targets := range byRegion {
			c.pools[poolKey(mode, region)] = targets
		}
	}
	return c
}

// LoadPool returns a copy of the pool for mode and region. Country and city
// pools ignore the region.
func (c *Catalog) LoadPool(_ context.Context, mode domain.Mode, region string) ([]domain.Target, error) {
	if mode != domain.ModeState {
		region = ""
	}
	pool, ok := c.pools[poolKey(mode, region)]
	if !ok {
		return nil, domain.ErrPoolNotFound
	}
	out := make([]domain.Target, len(pool))
	copy(out, pool)
	return Playable(mode, out), nil
}

// Pool is one target list of the catalog.
type Pool struct {
	Mode    domain.Mode
	Region  string
	Targets []domain.Target
}

// Pools lists the catalog contents ordered by mode and region, for seeding
// a database.
func (c *Catalog) Pools() []Pool {
	out := make([]Pool, 0, len(c.pools))
	for key, targets := range c.pools {
		mode, region, _ := strings.Cut(key, "/")
		cp := make([]domain.Target, len(targets))
		copy(cp, targets)
		out = append(out, Pool{Mode: domain.Mode(mode), Region: region, Targets: cp})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mode != out[j].Mode {
			return out[i].Mode < out[j].Mode
		}
		return out[i].Region < out[j].Region
	})
	return out
}

func poolKey(mode domain.Mode, region string) string {
	return string(mode) + "/" + region
}

func names(region string, list []string) []domain.Target {
	out := make([]domain.Target, 0, len(list))
	for _, n := range list {
		out = append(out, domain.Target{Name: n, RegionID: region})
	}
	return out
}

func cities() []domain.Target {
	return []domain.Target{
		{Name: "New York", RegionID: "usa", Lat: 40.7128, Lng: -74.006},
		{Name: "Los Angeles", RegionID: "usa", Lat: 34.0522, Lng: -118.2437},
		{Name: "Mumbai", RegionID: "india", Lat: 19.076, Lng: 72.8777},
		{Name: "Delhi", RegionID: "india", Lat: 28.6139, Lng: 77.209},
		{Name: "London", Lat: 51.5074, Lng: -0.1278},
		{Name: "Paris", Lat: 48.8566, Lng: 2.3522},
		{Name: "Tokyo", Lat: 35.6762, Lng: 139.6503},
		{Name: "Sydney", Lat: -33.8688, Lng: 151.2093},
		{Name: "Cairo", Lat: 30.0444, Lng: 31.2357},
		{Name: "Rio de Janeiro", Lat: -22.9068, Lng: -43.1729},
	}
}

// countries uses the feature names of the world-atlas 110m topology.
func countries() []domain.Target {
	return names("", []string{
		"Afghanistan", "Algeria", "Angola", "Antarctica", "Argentina", "Australia",
		"Bangladesh", "Bolivia", "Brazil", "Canada", "Chad", "Chile", "China",
		"Colombia", "Dem. Rep. Congo", "Egypt", "Ethiopia", "Finland", "France",
		"Germany", "Greenland", "India", "Indonesia", "Iran", "Iraq", "Italy", "Japan",
		"Kazakhstan", "Kenya", "Libya", "Madagascar", "Mali", "Mexico", "Mongolia",
		"Morocco", "Myanmar", "Namibia", "New Zealand", "Niger", "Nigeria", "Norway",
		"Pakistan", "Peru", "Poland", "Russia", "Saudi Arabia", "South Africa",
		"Spain", "Sudan", "Sweden", "Tanzania", "Thailand", "Turkey", "Ukraine",
		"United Kingdom", "United States of America", "Venezuela", "Vietnam",
	})
}

var usStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado",
	"Connecticut", "Delaware", "Florida", "Georgia", "Hawaii", "Idaho", "Illinois",
	"Indiana", "Iowa", "Kansas", "Kentucky", "Louisiana", "Maine", "Maryland",
	"Massachusetts", "Michigan", "Minnesota", "Mississippi", "Missouri", "Montana",
	"Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico", "New York",
	"North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania",
	"Rhode Island", "South Carolina", "South Dakota", "Tennessee", "Texas", "Utah",
	"Vermont", "Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

var indianStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh", "Goa",
	"Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka", "Kerala",
	"Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram", "Nagaland",
	"Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal", "Delhi", "Jammu and Kashmir",
}
