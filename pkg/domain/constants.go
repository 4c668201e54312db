package domain

const (
	// DefaultDwellDays is the time a customer occupies a state when the
	// definition does not say otherwise.
	DefaultDwellDays = 3.0

	// ProbabilityTolerance absorbs floating point noise when summing the
	// outbound probabilities of a state.
	ProbabilityTolerance = 1e-4

	// MaxSimulationSteps bounds the number of transitions a single simulated
	// customer may take. It guards against cycles in the graph; changing it
	// changes simulation output for a fixed seed.
	MaxSimulationSteps = 50

	// DefaultChannel labels transitions declared without a channel.
	DefaultChannel = "unspecified"

	// MaxJourneyIDLength truncates identifiers derived from long names.
	MaxJourneyIDLength = 60
)
