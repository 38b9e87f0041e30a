package category

// Confidence levels attached to a category's buffer distance.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Defaults returns the built-in obstacle categories. Distances are in metres.
func Defaults() []Category {
	return []Category{
		// Critical hazards.
		{
			Name:        "fuel_stations",
			BufferM:     100,
			Description: "Gas stations and fuel depots",
			Standard:    "NFPA_1123 (91m hazmat) + Missouri (183m)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("amenity", "fuel")},
		},
		{
			Name:        "power_plants",
			BufferM:     100,
			Description: "Power generation facilities",
			Standard:    "US_Municipal_Codes (150 ft electrical) + critical infrastructure",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("power", "plant", "generator")},
		},
		{
			Name:        "substations",
			BufferM:     50,
			Description: "Electrical substations and transformers",
			Standard:    "US_Municipal_Codes (150 ft/45m from electrical lines)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("power", "substation"), Exact("man_made", "substation")},
		},
		{
			Name:        "power_lines",
			BufferM:     30,
			Description: "Overhead electrical power lines",
			Standard:    "US_Municipal_Codes (150 ft/45m from overhead electrical lines)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("power", "line", "minor_line")},
		},
		{
			Name:        "airports",
			BufferM:     1500,
			Description: "Airports and airport infrastructure (runways, taxiways)",
			Standard:    "UK_CAA_CAP_736 (5.6km notification) + ICAO",
			Confidence:  ConfidenceHigh,
			Rules:       []Rule{OneOf("aeroway", "aerodrome", "runway", "taxiway")},
		},
		{
			Name:        "helipads",
			BufferM:     500,
			Description: "Helicopter landing pads and helipads",
			Standard:    "ICAO aviation safety (300-500 ft operations, 500m conservative)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("aeroway", "helipad")},
		},
		{
			Name:        "military",
			BufferM:     100,
			Description: "Military bases and installations",
			Standard:    "Security considerations (500m recommended for conflict zones)",
			Confidence:  ConfidenceLow,
			Rules:       []Rule{Exact("landuse", "military")},
		},

		// Health and safety.
		{
			Name:        "hospitals",
			BufferM:     50,
			Description: "Hospitals and medical centers",
			Standard:    "CZ_Act_344_2025 (250m adapted)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("amenity", "hospital")},
		},
		{
			Name:        "schools",
			BufferM:     100,
			Description: "Educational facilities",
			Standard:    "Missouri RSMo 320.151 (183m) + Tasmania WorkSafe (500m) adapted",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("amenity", "school", "kindergarten", "university", "college")},
		},
		{
			Name:        "nursing_homes",
			BufferM:     50,
			Description: "Care facilities for elderly and vulnerable populations",
			Standard:    "CZ_Act_344_2025 (250m adapted)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("amenity", "nursing_home", "social_facility")},
		},

		// Animal facilities.
		{
			Name:        "animal_facilities",
			BufferM:     30,
			Description: "Animal shelters, boarding facilities, and veterinary clinics",
			Standard:    "CZ_Act_344_2025 (250m from animal shelters) adapted for small facilities",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("amenity", "animal_shelter", "animal_boarding", "veterinary")},
		},
		{
			Name:        "theme_parks",
			BufferM:     100,
			Description: "Zoos, aquariums, and theme parks",
			Standard:    "CZ_Pyrotechnic_2025 (reduced from 250m)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("tourism", "zoo", "aquarium", "theme_park")},
		},

		// Government and security.
		{
			Name:        "government",
			BufferM:     50,
			Description: "Government buildings, embassies, and institutional complexes",
			Rules: []Rule{
				OneOf("amenity", "townhall", "embassy"),
				OneOf("office", "government", "diplomatic"),
				Exact("landuse", "institutional"),
			},
		},
		{
			Name:        "security",
			BufferM:     50,
			Description: "Police stations, fire stations, and correctional facilities",
			Rules:       []Rule{OneOf("amenity", "police", "fire_station", "prison")},
		},

		// Cultural and historic.
		{
			Name:        "memorials",
			BufferM:     50,
			Description: "Memorial sites",
			Standard:    "CFPA_E_Guideline_30_2013 (heritage fire protection)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("historic", "memorial")},
		},
		{
			Name:        "monuments",
			BufferM:     50,
			Description: "Historic monuments and landmarks",
			Standard:    "CFPA_E_Guideline_30_2013 (heritage fire protection)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("historic", "monument")},
		},
		{
			Name:        "historic_sites",
			BufferM:     50,
			Description: "Archaeological sites, castles, forts, and heritage sites",
			Standard:    "CFPA_E_Guideline_30_2013 (heritage fire protection)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("historic", "archaeological_site", "castle", "fort", "heritage", "ruins")},
		},
		{
			Name:        "museums",
			BufferM:     30,
			Description: "Museums and art galleries",
			Standard:    "CFPA_E_Guideline_30_2013 (cultural collections protection)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{OneOf("tourism", "museum", "gallery")},
		},
		{
			Name:        "tourism_attractions",
			BufferM:     30,
			Description: "Tourist attractions, public artwork, and viewpoints",
			Rules:       []Rule{OneOf("tourism", "attraction", "artwork", "viewpoint")},
		},
		{
			Name:        "religious",
			BufferM:     50,
			Description: "Churches, monasteries, and religious sites",
			Standard:    "Missouri RSMo 320.151 (183m from churches) adapted",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("landuse", "religious")},
		},
		{
			Name:        "cemeteries",
			BufferM:     50,
			Description: "Cemeteries and burial grounds",
			Rules:       []Rule{Exact("landuse", "cemetery"), Exact("amenity", "grave_yard")},
		},

		// Natural and recreation.
		{
			Name:        "parks",
			BufferM:     30,
			Description: "Parks, gardens, playgrounds, and sports facilities",
			Rules: []Rule{OneOf("leisure", "park", "garden", "playground", "pitch", "stadium",
				"sports_centre", "nature_reserve", "track")},
		},
		{
			Name:        "forests",
			BufferM:     30,
			Description: "Forests, woods, and tree-covered areas (fire risk)",
			Rules: []Rule{
				Exact("landuse", "forest"),
				OneOf("natural", "wood", "scrub", "tree_row", "shrubbery"),
			},
		},
		{
			Name:        "agriculture",
			BufferM:     30,
			Description: "Agricultural land, orchards, vineyards, and meadows",
			Rules:       []Rule{OneOf("landuse", "farmland", "orchard", "vineyard", "meadow", "greenfield")},
		},
		{
			Name:        "protected_areas",
			BufferM:     50,
			Description: "Nature reserves and protected environmental areas",
			Rules:       []Rule{Exact("boundary", "protected_area")},
		},
		{
			Name:        "water_bodies",
			BufferM:     20,
			Description: "Lakes, ponds, and reservoirs",
			Rules:       []Rule{Exact("natural", "water")},
		},
		{
			Name:        "waterways",
			BufferM:     20,
			Description: "Rivers, streams, canals",
			Rules:       []Rule{Wildcard("waterway")},
		},
		{
			Name:        "natural_hazards",
			BufferM:     50,
			Description: "Cliffs, valleys, wetlands, and hazardous terrain",
			Rules:       []Rule{OneOf("natural", "cliff", "valley", "wetland")},
		},

		// Infrastructure.
		{
			Name:        "railways",
			BufferM:     50,
			Description: "Railway infrastructure (stations, tracks, platforms, yards, depots)",
			Standard:    "UK_Network_Rail (radio interference, debris, operational safety)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Wildcard("railway"), Exact("landuse", "railway")},
		},
		{
			Name:        "driving_facilities",
			BufferM:     30,
			Description: "Driving schools and autodromes",
			Rules:       []Rule{Exact("amenity", "driver_training")},
		},
		{
			Name:        "construction",
			BufferM:     30,
			Description: "Active construction sites and contaminated brownfield land",
			Rules:       []Rule{OneOf("landuse", "construction", "brownfield")},
		},
		{
			Name:        "industrial_extraction",
			BufferM:     50,
			Description: "Quarries and mineral extraction sites",
			Rules:       []Rule{Exact("landuse", "quarry")},
		},
		{
			Name:        "towers",
			BufferM:     30,
			Description: "Communication towers and water towers",
			Rules:       []Rule{OneOf("man_made", "tower", "water_tower")},
		},
		{
			Name:        "reservoirs",
			BufferM:     30,
			Description: "Covered water reservoirs",
			Rules:       []Rule{Exact("man_made", "reservoir_covered")},
		},

		// Commercial.
		{
			Name:        "marketplaces",
			BufferM:     30,
			Description: "Public markets and high foot-traffic commercial areas",
			Rules:       []Rule{Exact("amenity", "marketplace")},
		},
		{
			Name:        "commercial_areas",
			BufferM:     30,
			Description: "Commercial zones, shops, restaurants, and cafes",
			Rules: []Rule{
				OneOf("landuse", "commercial", "retail"),
				Wildcard("shop"),
				OneOf("amenity", "restaurant", "cafe", "bar", "fast_food"),
			},
		},
		{
			Name:        "garages",
			BufferM:     20,
			Description: "Garage complexes and parking structures",
			Rules:       []Rule{Exact("landuse", "garages")},
		},

		// Standard obstacles.
		{
			Name:        "buildings",
			BufferM:     30,
			Description: "All building structures",
			Rules:       []Rule{Flag("building")},
		},
		{
			Name:        "roads",
			BufferM:     30,
			Description: "Major roads and highways",
			Rules: []Rule{OneOf("highway", "motorway", "trunk", "primary", "secondary", "tertiary",
				"motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link")},
		},
		{
			Name:        "parking",
			BufferM:     50,
			Description: "Parking lots and areas",
			Standard:    "NFPA_1124 (fallout zone for vehicle protection)",
			Confidence:  ConfidenceMedium,
			Rules:       []Rule{Exact("amenity", "parking"), Exact("landuse", "parking")},
		},
		{
			Name:        "industrial",
			BufferM:     30,
			Description: "Industrial zones and factories",
			Rules:       []Rule{Exact("landuse", "industrial")},
		},
	}
}
