package config

// DomainConfig holds the configurable business rules for flow graphs
type DomainConfig struct {
	// Flow constraints
	MaxNodesPerFlow int
	MaxEdgesPerFlow int
	DefaultFlowName string

	// Node constraints
	MaxLabelLength    int
	MaxPayloadBytes   int
	MaxNodesPerDelete int

	// Validation settings
	AllowSelfConnections bool
	AllowDuplicateEdges  bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerFlow: 500,
		MaxEdgesPerFlow: 2000,
		DefaultFlowName: "Untitled Flow",

		MaxLabelLength:    120,
		MaxPayloadBytes:   64 * 1024,
		MaxNodesPerDelete: 100,

		AllowSelfConnections: false,
		AllowDuplicateEdges:  false,
	}
}

// DevelopmentDomainConfig returns a permissive configuration for local work
func DevelopmentDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()
	cfg.MaxNodesPerFlow = 10000
	cfg.MaxEdgesPerFlow = 50000
	cfg.AllowSelfConnections = true
	cfg.AllowDuplicateEdges = true
	return cfg
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	if environment == "development" {
		return DevelopmentDomainConfig()
	}
	return DefaultDomainConfig()
}
