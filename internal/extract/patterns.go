package extract

import "regexp"

// The pattern library is deliberately data: ordered recognizer tables per
// entity class. Order matters — earlier entries carry higher trust and the
// bag preserves that order for downstream scoring.

// numberPattern recognizes contract or agreement numbers. The first capture
// group must hold the numeric value.
type numberPattern struct {
	re         *regexp.Regexp
	confidence float64
	source     string
}

// namePattern recognizes customer names. Runs against the original-cased text.
type namePattern struct {
	re         *regexp.Regexp
	confidence float64
	language   string
}

// amountPattern recognizes monetary amounts. The first capture group must
// hold the numeric value.
type amountPattern struct {
	re         *regexp.Regexp
	confidence float64
	context    string
}

// datePattern recognizes dates. Format selects the parsing rule in
// parseDateMatch.
type datePattern struct {
	re         *regexp.Regexp
	confidence float64
	format     string
}

// typeProfile classifies a payment type from indicator words. Confidence is
// the base scaled by the fraction of indicators actually present.
type typeProfile struct {
	paymentType PaymentType
	re          *regexp.Regexp
	confidence  float64
	indicators  []string
}

// Contract numbers accepted in (0, 999999). LTO-prefixed references are the
// strongest signal; bare digits next to a keyword the weakest.
var contractNumberPatterns = []numberPattern{
	{regexp.MustCompile(`lto(\d{4,})`), 0.95, "direct"},
	{regexp.MustCompile(`contract[#\s]*(\d+)`), 0.85, "direct"},
	{regexp.MustCompile(`عقد\s*(\d+)`), 0.85, "direct"},
	{regexp.MustCompile(`(\d{1,4})\s*(?:رنت|rent)`), 0.75, "contextual"},
	{regexp.MustCompile(`(\d+)\s*(?:صن|ماجيك|مشكور)`), 0.70, "contextual"},
	{regexp.MustCompile(`(\d{2,6})\s*(?:payment|دفع)`), 0.60, "pattern"},
}

// Agreement numbers must exceed 1000 to filter out day numbers and counters
var agreementNumberPatterns = []numberPattern{
	{regexp.MustCompile(`lto(\d{4,})`), 0.98, "lto"},
	{regexp.MustCompile(`اتفاقية\s*(\d+)`), 0.90, "numeric"},
	{regexp.MustCompile(`agreement[#\s]*(\d+)`), 0.85, "mixed"},
}

// Customer names keep original casing, so these fold case themselves.
// Accepted length in (2, 50).
var customerNamePatterns = []namePattern{
	{regexp.MustCompile(`(?i)(صن\s*ماجيك|sun\s*magic)`), 0.95, "mixed"},
	{regexp.MustCompile(`(?i)(مشكور|mashkoor)`), 0.90, "mixed"},
	{regexp.MustCompile(`(?i)(ماجيك|magic)`), 0.80, "mixed"},
	{regexp.MustCompile(`([A-Za-z]{2,}\s+[A-Za-z]{2,})`), 0.70, "english"},
	{regexp.MustCompile(`([\x{0600}-\x{06FF}]{2,}\s+[\x{0600}-\x{06FF}]{2,})`), 0.75, "arabic"},
}

// Amounts accepted in (0, 1000000). Explicit currency markers beat the bare
// 3-6 digit fallback.
var amountPatterns = []amountPattern{
	{regexp.MustCompile(`(\d{1,6}(?:\.\d{1,3})?)\s*(?:د\.ك\.|ريال|kwd)`), 0.95, "explicit"},
	{regexp.MustCompile(`amount[:\s]*(\d{1,6}(?:\.\d{1,3})?)`), 0.90, "labeled"},
	{regexp.MustCompile(`مبلغ[:\s]*(\d{1,6}(?:\.\d{1,3})?)`), 0.90, "labeled"},
	{regexp.MustCompile(`(\d{3,6}(?:\.\d{1,3})?)`), 0.60, "inferred"},
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})`), 0.95, "month_year"},
	{regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`), 0.90, "dd/mm/yyyy"},
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), 0.95, "yyyy-mm-dd"},
	{regexp.MustCompile(`(يناير|فبراير|مارس|أبريل|مايو|يونيو|يوليو|أغسطس|سبتمبر|أكتوبر|نوفمبر|ديسمبر)\s+(\d{4})`), 0.90, "arabic_month_year"},
}

var paymentTypeProfiles = []typeProfile{
	{
		paymentType: PaymentTypeRent,
		re:          regexp.MustCompile(`rent|إيجار|monthly|شهري`),
		confidence:  0.90,
		indicators:  []string{"rent", "monthly", "إيجار", "شهري"},
	},
	{
		paymentType: PaymentTypeLateFee,
		re:          regexp.MustCompile(`late|متأخر|fine|غرامة|auto-generated.*late|penalty`),
		confidence:  0.95,
		indicators:  []string{"late", "fine", "غرامة", "متأخر"},
	},
	{
		paymentType: PaymentTypeAdvance,
		re:          regexp.MustCompile(`advance|مقدم|deposit|تأمين`),
		confidence:  0.85,
		indicators:  []string{"advance", "deposit", "مقدم", "تأمين"},
	},
}

var englishMonths = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

var arabicMonths = map[string]int{
	"يناير": 1, "فبراير": 2, "مارس": 3, "أبريل": 4,
	"مايو": 5, "يونيو": 6, "يوليو": 7, "أغسطس": 8,
	"سبتمبر": 9, "أكتوبر": 10, "نوفمبر": 11, "ديسمبر": 12,
}
