package header

// Fixed byte ranges of the metadata payload.
const (
	numVariablesStart = 0
	numProbesStart    = 4
	numSweepsStart    = 8
	numSweepsEnd      = 12
	versionStart1     = 16
	versionStart2     = 20
	versionLen        = 4
	titleStart        = 24
	dateStart         = 88
	dateEnd           = 112
	sweepSizeStart1   = 176
	sweepSizeStart2   = 187
	sweepSizeLen      = 10

	// VariablesStart is where the whitespace-separated token stream begins.
	VariablesStart = 256
)

// Terminator ends the metadata text.
const Terminator = "$&%#"

// Type flag values of the first token.
const (
	TypeReal    = 1
	TypeComplex = 2
)

// Version tokens.
const (
	tokenLegacy   = "9007"
	tokenStandard = "9601"
	tokenExtended = "2001"
)
