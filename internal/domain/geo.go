package domain

import (
	"fmt"
	"strings"
)

type Division struct {
	Name      string
	Districts []string
}

// GeoTaxonomy is the static Division -> District reference data.
type GeoTaxonomy struct {
	divisions  []Division
	byDivision map[string]int
	byDistrict map[string]districtRef
}

type districtRef struct {
	name     string
	division int
}

var bangladeshDivisions = []Division{
	{Name: "Barishal", Districts: []string{"Barguna", "Barishal", "Bhola", "Jhalokati", "Patuakhali", "Pirojpur"}},
	{Name: "Chattogram", Districts: []string{"Bandarban", "Brahmanbaria", "Chandpur", "Chattogram", "Cox's Bazar", "Cumilla", "Feni", "Khagrachhari", "Lakshmipur", "Noakhali", "Rangamati"}},
	{Name: "Dhaka", Districts: []string{"Dhaka", "Faridpur", "Gazipur", "Gopalganj", "Kishoreganj", "Madaripur", "Manikganj", "Munshiganj", "Narayanganj", "Narsingdi", "Rajbari", "Shariatpur", "Tangail"}},
	{Name: "Khulna", Districts: []string{"Bagerhat", "Chuadanga", "Jashore", "Jhenaidah", "Khulna", "Kushtia", "Magura", "Meherpur", "Narail", "Satkhira"}},
	{Name: "Mymensingh", Districts: []string{"Jamalpur", "Mymensingh", "Netrokona", "Sherpur"}},
	{Name: "Rajshahi", Districts: []string{"Bogura", "Chapainawabganj", "Joypurhat", "Naogaon", "Natore", "Pabna", "Rajshahi", "Sirajganj"}},
	{Name: "Rangpur", Districts: []string{"Dinajpur", "Gaibandha", "Kurigram", "Lalmonirhat", "Nilphamari", "Panchagarh", "Rangpur", "Thakurgaon"}},
	{Name: "Sylhet", Districts: []string{"Habiganj", "Moulvibazar", "Sunamganj", "Sylhet"}},
}

func NewGeoTaxonomy(divisions []Division) *GeoTaxonomy {
	g := &GeoTaxonomy{
		divisions:  divisions,
		byDivision: make(map[string]int, len(divisions)),
		byDistrict: make(map[string]districtRef),
	}
	for i, d := range divisions {
		g.byDivision[strings.ToLower(d.Name)] = i
		for _, district := range d.Districts {
			g.byDistrict[strings.ToLower(district)] = districtRef{name: district, division: i}
		}
	}
	return g
}

// BangladeshGeo returns the eight divisions and 64 districts of Bangladesh.
func BangladeshGeo() *GeoTaxonomy {
	return NewGeoTaxonomy(bangladeshDivisions)
}

func (g *GeoTaxonomy) Divisions() []string {
	names := make([]string, len(g.divisions))
	for i, d := range g.divisions {
		names[i] = d.Name
	}
	return names
}

// DistrictsByDivision matches the division name case-insensitively.
func (g *GeoTaxonomy) DistrictsByDivision(division string) ([]string, error) {
	i, ok := g.byDivision[strings.ToLower(strings.TrimSpace(division))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDivision, division)
	}
	return append([]string(nil), g.divisions[i].Districts...), nil
}

func (g *GeoTaxonomy) DivisionForDistrict(district string) (string, error) {
	ref, ok := g.byDistrict[strings.ToLower(strings.TrimSpace(district))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDistrict, district)
	}
	return g.divisions[ref.division].Name, nil
}

// CanonicalDistrict returns the district's reference spelling.
func (g *GeoTaxonomy) CanonicalDistrict(district string) (string, error) {
	ref, ok := g.byDistrict[strings.ToLower(strings.TrimSpace(district))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDistrict, district)
	}
	return ref.name, nil
}
