package core

// Health is the storage component status reported by /health
type Health int

const (
	HealthOK Health = iota
	HealthDegraded
	HealthDisabled
)

func (h Health) String() string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthDegraded:
		return "degraded"
	case HealthDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
