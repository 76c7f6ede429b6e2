package models

// UPIStatus represents the outcome of a UPI identifier validation
type UPIStatus string

const (
	UPIStatusSuccess       UPIStatus = "Success"
	UPIStatusFail          UPIStatus = "Fail"
	UPIStatusInvalid       UPIStatus = "Invalid"
	UPIStatusIndeterminate UPIStatus = "Indeterminate"
)

// UPI pattern-fraud error types
const (
	UPIErrMultipleAtSymbols = "MULTIPLE_AT_SYMBOLS"
	UPIErrInvalidPrefix     = "INVALID_PREFIX"
	UPIErrInvalidSuffix     = "INVALID_SUFFIX"
)

// Base risk bounds for suffix records; normalization maps [min,max] to [0,100]
const (
	UPIMinBaseRisk = 5
	UPIMaxBaseRisk = 25
)

// BankRecord holds provider metadata for a UPI handle suffix
type BankRecord struct {
	Bank string `json:"bank"`
	Risk int    `json:"risk"`
}

// UPIPatternCheck is the result of the pattern-fraud pre-check
type UPIPatternCheck struct {
	IsValid      bool   `json:"is_valid"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	UPIID        string `json:"upiid"`
}

// UPIReport is the result of validating a UPI identifier
type UPIReport struct {
	Status    UPIStatus `json:"status"`
	UPIID     string    `json:"upiid"`
	Bank      string    `json:"bank,omitempty"`
	Message   string    `json:"message,omitempty"`
	RiskScore int       `json:"riskscore"`
	RiskLevel RiskLevel `json:"risklevel"`
}

// BankSuffixes maps UPI handle suffixes to provider metadata and base risk.
// Loaded once at process start, read-only afterwards; lookups are exact
// case-insensitive matches on the lowered suffix.
var BankSuffixes = map[string]BankRecord{
	"sbi":         {Bank: "State Bank of India", Risk: 5},
	"hdfc":        {Bank: "HDFC Bank", Risk: 5},
	"icici":       {Bank: "ICICI Bank", Risk: 5},
	"axisbank":    {Bank: "Axis Bank", Risk: 5},
	"barodampay":  {Bank: "Bank of Baroda", Risk: 5},
	"pnb":         {Bank: "Punjab National Bank", Risk: 5},
	"cnrb":        {Bank: "Canara Bank", Risk: 5},
	"kotak":       {Bank: "Kotak Mahindra Bank", Risk: 5},
	"kotak811":    {Bank: "Kotak Mahindra Bank (811)", Risk: 5},
	"centralbank": {Bank: "Central Bank of India", Risk: 5},
	"federal":     {Bank: "Federal Bank", Risk: 5},

	"upi":        {Bank: "BHIM (NPCI)", Risk: 15},
	"ybl":        {Bank: "PhonePe - Yes Bank", Risk: 15},
	"ibl":        {Bank: "PhonePe - ICICI Bank", Risk: 15},
	"axl":        {Bank: "PhonePe - Axis Bank", Risk: 15},
	"okhdfcbank": {Bank: "Google Pay - HDFC Bank", Risk: 10},
	"okicici":    {Bank: "Google Pay - ICICI Bank", Risk: 10},
	"oksbi":      {Bank: "Google Pay - SBI", Risk: 10},
	"okaxis":     {Bank: "Google Pay - Axis Bank", Risk: 10},
	"yes":        {Bank: "Yes Bank", Risk: 15},
	"yesbank":    {Bank: "Yes Bank", Risk: 15},

	"apl":  {Bank: "Amazon Pay", Risk: 12},
	"yapl": {Bank: "Amazon Pay - Yes Bank", Risk: 12},
	"rapl": {Bank: "Amazon Pay - ICICI Bank", Risk: 12},

	"paytm":  {Bank: "Paytm Payments Bank", Risk: 25},
	"ptyes":  {Bank: "Paytm - Yes Bank", Risk: 25},
	"ptaxis": {Bank: "Paytm - Axis Bank", Risk: 25},
	"ptsbi":  {Bank: "Paytm - SBI", Risk: 25},
	"pthdfc": {Bank: "Paytm - HDFC Bank", Risk: 25},
	"airtel": {Bank: "Airtel Payments Bank", Risk: 25},
}

const UnknownBankName = "Unknown Bank or App"
