package autofinder

import (
	"encoding/json"
	"strings"
)

// Environment variables holding collaborator credentials.
const (
	EnvSearchAPIKey   = "GOOGLE_API_KEY"
	EnvSearchEngineID = "GOOGLE_CSE_ID"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
)

// Default tuning values applied by ParseConfig when the config document
// leaves them unset.
const (
	DefaultTermMonths          = 60
	DefaultPriceToleranceAbs   = 500.0
	DefaultPriceTolerancePct   = 0.03
	DefaultMileageTolerancePct = 0.10
)

// Location scopes discovery to a geographic area.
type Location struct {
	PostalCode  string `json:"zip"`
	RadiusMiles int    `json:"radius_miles"`
}

// Budget holds the buyer's payment ceilings.
type Budget struct {
	MaxDownPayment    float64 `json:"max_down_payment"`
	MaxMonthlyPayment float64 `json:"max_monthly_payment"`
	TermMonths        int     `json:"term_months"`
}

// MaxPrice returns the highest vehicle price the budget supports, assuming
// the full down payment plus the monthly ceiling over the loan term.
func (b Budget) MaxPrice() float64 {
	return b.MaxDownPayment + b.MaxMonthlyPayment*float64(b.TermMonths)
}

// Tolerances holds the fuzzy-matching thresholds used by deduplication.
// Two records cluster on price when the absolute difference is within
// PriceAbs or within PricePct of the lower price, whichever is larger.
type Tolerances struct {
	PriceAbs   float64 `json:"price_abs"`
	PricePct   float64 `json:"price_pct"`
	MileagePct float64 `json:"mileage_pct"`
}

// Config is the immutable per-run configuration shared by all pipeline
// stages. Build it with ParseConfig and treat it as read-only afterwards.
type Config struct {
	Location     Location
	AllowedMakes []string
	Budget       Budget
	Sources      map[string]bool
	Tolerances   Tolerances
}

// MakeAllowed reports whether make is on the allow-list (case-insensitive).
func (c Config) MakeAllowed(make string) bool {
	for _, m := range c.AllowedMakes {
		if strings.EqualFold(m, make) {
			return true
		}
	}
	return false
}

// SourceEnabled reports whether the named source adapter is enabled.
func (c Config) SourceEnabled(name string) bool {
	return c.Sources[name]
}

// Validate returns an error if the config is incomplete or inconsistent.
func (c Config) Validate() error {
	if c.Location.PostalCode == "" {
		return Errorf(EINVALID, "postal code required")
	}
	if c.Location.RadiusMiles <= 0 {
		return Errorf(EINVALID, "search radius must be positive")
	}
	if len(c.AllowedMakes) == 0 {
		return Errorf(EINVALID, "at least one make required")
	}
	if c.Budget.MaxDownPayment < 0 || c.Budget.MaxMonthlyPayment < 0 {
		return Errorf(EINVALID, "budget values must be non-negative")
	}
	if c.Budget.MaxPrice() <= 0 {
		return Errorf(EINVALID, "budget allows no purchase price")
	}
	return nil
}

// configDocument mirrors the JSON configuration file shape.
type configDocument struct {
	Zip         string `json:"zip"`
	RadiusMiles int    `json:"radius_miles"`
	Filters     struct {
		IncludeMakes []string `json:"include_makes"`
	} `json:"filters"`
	MaxDownPayment    float64         `json:"max_down_payment"`
	MaxMonthlyPayment float64         `json:"max_monthly_payment"`
	TermMonths        int             `json:"term_months"`
	Sources           map[string]bool `json:"sources"`
	Tolerances        *Tolerances     `json:"tolerances"`
}

// ParseConfig parses a JSON configuration document and applies defaults.
// The returned Config is validated; parse or validation failures return
// an EINVALID error.
func ParseConfig(data []byte) (Config, error) {
	var doc configDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Config{}, Errorf(EINVALID, "invalid config document: %s", err)
	}

	cfg := Config{
		Location:     Location{PostalCode: doc.Zip, RadiusMiles: doc.RadiusMiles},
		AllowedMakes: doc.Filters.IncludeMakes,
		Budget: Budget{
			MaxDownPayment:    doc.MaxDownPayment,
			MaxMonthlyPayment: doc.MaxMonthlyPayment,
			TermMonths:        doc.TermMonths,
		},
		Sources: doc.Sources,
		Tolerances: Tolerances{
			PriceAbs:   DefaultPriceToleranceAbs,
			PricePct:   DefaultPriceTolerancePct,
			MileagePct: DefaultMileageTolerancePct,
		},
	}

	if cfg.Budget.TermMonths <= 0 {
		cfg.Budget.TermMonths = DefaultTermMonths
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]bool{"search": true}
	}
	if doc.Tolerances != nil {
		if doc.Tolerances.PriceAbs > 0 {
			cfg.Tolerances.PriceAbs = doc.Tolerances.PriceAbs
		}
		if doc.Tolerances.PricePct > 0 {
			cfg.Tolerances.PricePct = doc.Tolerances.PricePct
		}
		if doc.Tolerances.MileagePct > 0 {
			cfg.Tolerances.MileagePct = doc.Tolerances.MileagePct
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Credentials holds the secrets required by the external collaborators.
type Credentials struct {
	SearchAPIKey   string
	SearchEngineID string
	GeminiAPIKey   string
}

// CredentialsFromEnv reads collaborator credentials using the provided
// lookup function (typically os.Getenv). It returns an EINVALID error
// naming every missing variable so the user can fix all of them at once.
func CredentialsFromEnv(getenv func(string) string) (Credentials, error) {
	creds := Credentials{
		SearchAPIKey:   getenv(EnvSearchAPIKey),
		SearchEngineID: getenv(EnvSearchEngineID),
		GeminiAPIKey:   getenv(EnvGeminiAPIKey),
	}

	var missing []string
	if creds.SearchAPIKey == "" {
		missing = append(missing, EnvSearchAPIKey)
	}
	if creds.SearchEngineID == "" {
		missing = append(missing, EnvSearchEngineID)
	}
	if creds.GeminiAPIKey == "" {
		missing = append(missing, EnvGeminiAPIKey)
	}
	if len(missing) > 0 {
		return Credentials{}, Errorf(EINVALID, "missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return creds, nil
}
