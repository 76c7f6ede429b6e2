package models

// StructureCheck flags suspicious elements in the raw URL structure
type StructureCheck struct {
	Score        int      `json:"score"`
	Details      []string `json:"details"`
	IsSuspicious bool     `json:"is_suspicious"`
}

// DomainCheck flags suspicious domain characteristics
type DomainCheck struct {
	Score        int      `json:"score"`
	Details      []string `json:"details"`
	IsSuspicious bool     `json:"is_suspicious"`
}

// TLDCheck reports top-level-domain membership in the suspicious set
type TLDCheck struct {
	Score        int    `json:"score"`
	TLD          string `json:"tld"`
	IsSuspicious bool   `json:"is_suspicious"`
}

// ShortenerCheck reports URL-shortener membership
type ShortenerCheck struct {
	IsShortener bool   `json:"is_shortener"`
	Score       int    `json:"score"`
	Warning     string `json:"warning,omitempty"`
}

// KeywordCheck reports phishing keyword substring hits
type KeywordCheck struct {
	KeywordsFound []string `json:"keywords_found"`
	Score         int      `json:"score"`
	IsSuspicious  bool     `json:"is_suspicious"`
}

// PatternCheck reports suspicious regex pattern hits
type PatternCheck struct {
	Patterns     []string `json:"patterns"`
	Score        int      `json:"score"`
	IsSuspicious bool     `json:"is_suspicious"`
}

// HTTPSCheck reports transport security. Informational only: it contributes
// no points but still carries a combination weight.
type HTTPSCheck struct {
	IsHTTPS bool   `json:"is_https"`
	Warning string `json:"warning,omitempty"`
}

// LengthCheck reports URL length thresholds
type LengthCheck struct {
	Length       int    `json:"length"`
	Score        int    `json:"score"`
	IsSuspicious bool   `json:"is_suspicious"`
	Warning      string `json:"warning,omitempty"`
}

// SubdomainCheck reports subdomain counts
type SubdomainCheck struct {
	Count        int    `json:"count"`
	Score        int    `json:"score"`
	IsSuspicious bool   `json:"is_suspicious"`
	Warning      string `json:"warning,omitempty"`
}

// IPCheck reports raw-IP hosts; private ranges score higher
type IPCheck struct {
	IsIPAddress bool   `json:"is_ip_address"`
	IsPrivateIP bool   `json:"is_private_ip"`
	Score       int    `json:"score"`
	Warning     string `json:"warning,omitempty"`
}

// URLChecks holds the ten independent lexical checks for one URL
type URLChecks struct {
	Structure  StructureCheck `json:"structure_analysis"`
	Domain     DomainCheck    `json:"domain_analysis"`
	TLD        TLDCheck       `json:"tld_analysis"`
	Shortener  ShortenerCheck `json:"shortener_check"`
	Keywords   KeywordCheck   `json:"phishing_keywords"`
	Patterns   PatternCheck   `json:"suspicious_patterns"`
	HTTPS      HTTPSCheck     `json:"https_check"`
	Length     LengthCheck    `json:"url_length_check"`
	Subdomains SubdomainCheck `json:"subdomain_check"`
	IPAddress  IPCheck        `json:"ip_address_check"`
}

// URLReport is the result of analyzing one URL
type URLReport struct {
	Status           Status     `json:"status"`
	Message          string     `json:"message,omitempty"`
	URL              string     `json:"url"`
	IsShortened      bool       `json:"is_shortened"`
	ExpandedURL      string     `json:"expanded_url,omitempty"`
	ExpandedAnalysis *URLReport `json:"expanded_analysis,omitempty"`
	IsValid          bool       `json:"is_valid"`
	RiskScore        int        `json:"risk_score"`
	RiskLevel        RiskLevel  `json:"risk_level"`
	Checks           *URLChecks `json:"checks,omitempty"`
	Warnings         []string   `json:"warnings"`
	Recommendation   string     `json:"recommendation"`
}

// SuspiciousTLDs are top-level domains commonly used in phishing campaigns
var SuspiciousTLDs = map[string]struct{}{
	".tk": {}, ".ml": {}, ".ga": {}, ".cf": {}, ".gq": {}, ".xyz": {},
	".top": {}, ".work": {}, ".click": {}, ".review": {}, ".country": {},
	".kim": {}, ".science": {}, ".cricket": {}, ".date": {}, ".faith": {},
	".accountant": {}, ".loan": {}, ".win": {}, ".download": {}, ".pw": {},
	".cc": {}, ".su": {}, ".ws": {}, ".stream": {},
}

// URLShorteners are shortening services that hide the true destination
var URLShorteners = map[string]struct{}{
	"bit.ly": {}, "tinyurl.com": {}, "goo.gl": {}, "t.co": {}, "ow.ly": {},
	"is.gd": {}, "buff.ly": {}, "adf.ly": {}, "j.mp": {}, "tr.im": {},
	"cli.gs": {}, "short.to": {}, "budurl.com": {}, "ping.fm": {},
	"post.ly": {}, "just.as": {}, "bkite.com": {}, "snipr.com": {},
	"fic.kr": {}, "loopt.us": {}, "doiop.com": {}, "short.ie": {},
	"kl.am": {}, "wp.me": {}, "rubyurl.com": {}, "om.ly": {}, "to.ly": {},
	"bit.do": {}, "lnkd.in": {}, "db.tt": {}, "qr.ae": {}, "cur.lv": {},
	"ity.im": {}, "q.gs": {}, "po.st": {}, "bc.vc": {}, "twitthis.com": {},
	"u.telecom": {}, "yourls.org": {}, "v.gd": {}, "rb.gy": {},
	"shorturl.at": {}, "qrco.de": {}, "cutt.ly": {}, "bitly.com": {},
	"tiny.cc": {}, "shorte.st": {}, "linktr.ee": {}, "t.ly": {},
	"zaplink.net": {}, "mcaf.ee": {}, "clck.ru": {}, "git.io": {},
	"shorturl.io": {},
}

// PhishingKeywords are substrings commonly found in malicious URLs
var PhishingKeywords = []string{
	"login", "signin", "verify", "secure", "account", "update",
	"confirm", "password", "credential", "banking", "paypal",
	"ebay", "amazon", "apple", "microsoft", "google", "netflix",
	// "confirm" appears twice and so scores double before the cap
	"support", "service", "help", "confirm", "wallet", "crypto",
	"bitcoin", "eth", "free", "gift", "winner", "lucky", "claim",
	"verifyyour", "securelogin", "accountverify", "updateinfo",
	"bankofamerica", "chase", "wellsfargo", "citibank", "sbi",
	"hdfc", "icici", "axisbank", "okxd", "upi", "paytm",
}

// SuspiciousURLPatterns are regex sources matched case-insensitively
// against the full URL
var SuspiciousURLPatterns = []string{
	`@`,
	`\-\-`,
	`\.\.`,
	`%[0-9a-fA-F]{2}`,
	`\.php`,
	`\.asp`,
	`\.jsp`,
	`admin`,
	`login`,
	`secure`,
	`account`,
	`verify`,
	`update`,
	`confirm`,
	`auth`,
	`credential`,
}

// KnownBrands are brand names checked for lookalike domains
var KnownBrands = []string{
	"google", "amazon", "apple", "microsoft", "paypal", "ebay",
	"facebook", "instagram", "twitter", "netflix", "whatsapp", "telegram",
}
