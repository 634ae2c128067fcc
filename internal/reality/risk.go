package reality

import "strings"

// RiskVerdict is the outcome of the risk heuristics for a single host.
type RiskVerdict struct {
	IsRisk  bool   `json:"isRisk" yaml:"isRisk"`
	Penalty int    `json:"penalty" yaml:"penalty"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// RiskCategory names the rule that produced a verdict.
type RiskCategory string

const (
	RiskNone        RiskCategory = "none"
	RiskRegion      RiskCategory = "region-restriction"
	RiskInstitution RiskCategory = "sensitive-institution"
	RiskHighRegion  RiskCategory = "high-risk-region"
	RiskContent     RiskCategory = "content"
	RiskFinancial   RiskCategory = "financial"
)

type riskRule struct {
	category RiskCategory
	penalty  int
	reason   string
	match    func(host string) bool
}

// riskRules is evaluated top to bottom and the first match wins.
var riskRules = []riskRule{
	{
		category: RiskRegion,
		penalty:  40,
		reason:   "Region restriction: Mainland China domain detected.",
		match: func(host string) bool {
			return strings.HasSuffix(host, ".cn") || containsAny(host, "baidu.com", "qq.com", "gov.cn")
		},
	},
	{
		category: RiskInstitution,
		penalty:  20,
		reason:   "Sensitive institution: Government or educational domains are monitored.",
		match: func(host string) bool {
			return containsAny(host, ".gov", ".edu")
		},
	},
	{
		category: RiskHighRegion,
		penalty:  25,
		reason:   "Regional risk: This area is highly monitored.",
		match: func(host string) bool {
			return hasAnySuffix(host, ".ru", ".ir", ".kp", ".sy")
		},
	},
	{
		category: RiskContent,
		penalty:  50,
		reason:   "Content risk: These sites may be blocked in many environments.",
		match: func(host string) bool {
			return containsAny(host, "pornhub", "gambling", "casino", "bet")
		},
	},
	{
		category: RiskFinancial,
		penalty:  30,
		reason:   "Behavior risk: Financial domain detected.",
		match: func(host string) bool {
			return containsAny(host, "bank", "paypal", "stripe", "visa", "mastercard", "chase")
		},
	},
}

var premiumDomains = []string{
	"microsoft.com",
	"apple.com",
	"cisco.com",
	"icloud.com",
	"azure.microsoft.com",
	"raw.githubusercontent.com",
	"amazon.com",
	"cloudflare.com",
	"steamcommunity.com",
}

// AssessRisk returns the verdict of the first matching risk rule for host.
func AssessRisk(host string) RiskVerdict {
	verdict, _ := classifyRisk(host)
	return verdict
}

// RiskCategoryOf returns the category AssessRisk would pick for host.
func RiskCategoryOf(host string) RiskCategory {
	_, category := classifyRisk(host)
	return category
}

func classifyRisk(host string) (RiskVerdict, RiskCategory) {
	h := strings.ToLower(host)
	for _, rule := range riskRules {
		if rule.match(h) {
			return RiskVerdict{IsRisk: true, Penalty: rule.penalty, Reason: rule.reason}, rule.category
		}
	}
	return RiskVerdict{}, RiskNone
}

// IsPremium reports whether host ends with one of the known-good platform domains.
func IsPremium(host string) bool {
	return hasAnySuffix(strings.ToLower(host), premiumDomains...)
}

// PremiumDomains returns a copy of the allow-list.
func PremiumDomains() []string {
	return append([]string(nil), premiumDomains...)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
