package risk

import (
	"fmt"
	"strings"

	"github.com/soccz/young-and-home/internal/domain"
)

// reportText holds the per-locale strings of the assembled report.
// Category and severity labels carry both locales; free-text finding
// descriptions stay in the canonical locale.
type reportText struct {
	title           string
	crossHeading    string
	crossWarning    string
	crossVerified   string
	crossHeuristic  string
	riskHeading     string
	levelLabel      string
	scoreLabel      string
	scoreSuffix     string
	valueLabel      string
	findingsHeading string
	noFindings      string
	adviceHeading   string
	unableToAnalyze string
}

var reportTexts = map[domain.Locale]reportText{
	domain.LocaleKO: {
		title:           "## ⚖️ 안전 분석 리포트",
		crossHeading:    "### 🕵️ 계약서 교차 검증",
		crossWarning:    "> 🚨 **경고**: 계약서 내용이 등기부등본과 일치하지 않습니다. 절대 계약금을 입금하지 마세요!",
		crossVerified:   "> ✨ **검증 완료**: 소유자와 주소가 등기부와 일치합니다.",
		crossHeuristic:  "_주소 비교는 단순 어절 대조 방식으로, 표기 차이를 허용하는 대신 일부 불일치를 놓칠 수 있습니다._",
		riskHeading:     "### 📊 등기부 위험 진단",
		levelLabel:      "종합 등급",
		scoreLabel:      "위험 점수",
		scoreSuffix:     "점",
		valueLabel:      "추정 시세",
		findingsHeading: "**발견된 위험 요소:**",
		noFindings:      "- ✅ 특별한 위험 요소가 발견되지 않았습니다.",
		adviceHeading:   "### 💡 권고 사항",
		unableToAnalyze: "문서를 분석할 수 없습니다.",
	},
	domain.LocaleEN: {
		title:           "## ⚖️ Lease Safety Report",
		crossHeading:    "### 🕵️ Contract Cross-Validation",
		crossWarning:    "> 🚨 **WARNING**: the contract does not match the registry. Do not transfer any deposit!",
		crossVerified:   "> ✨ **Verified**: owner and address match the registry.",
		crossHeuristic:  "_Address comparison is token-based and intentionally loose; it tolerates formatting differences at the cost of occasionally missing a mismatch._",
		riskHeading:     "### 📊 Registry Risk Assessment",
		levelLabel:      "Overall level",
		scoreLabel:      "Risk score",
		scoreSuffix:     " pts",
		valueLabel:      "Estimated value",
		findingsHeading: "**Detected risk factors:**",
		noFindings:      "- ✅ No notable risk factors were found.",
		adviceHeading:   "### 💡 Recommendation",
		unableToAnalyze: "The document could not be analyzed.",
	},
}

var severityLabels = map[domain.Locale]map[domain.Severity]string{
	domain.LocaleKO: {
		domain.SeverityLow:      "낮음",
		domain.SeverityMedium:   "보통",
		domain.SeverityHigh:     "높음",
		domain.SeverityCritical: "매우높음",
	},
	domain.LocaleEN: {
		domain.SeverityLow:      "LOW",
		domain.SeverityMedium:   "MEDIUM",
		domain.SeverityHigh:     "HIGH",
		domain.SeverityCritical: "CRITICAL",
	},
}

var categoryLabels = map[domain.Locale]map[string]string{
	domain.LocaleKO: {
		CategoryMultipleMortgages: "근저당 다중설정",
		CategoryMortgage:          "근저당 설정",
		CategorySeizure:           "압류/가압류",
		CategoryPriorLease:        "선순위 임차인",
		CategoryDebtExceeded:      "채권초과 위험",
		CategoryDebtWarning:       "채권 근접 경고",
	},
	domain.LocaleEN: {
		CategoryMultipleMortgages: "Multiple mortgages",
		CategoryMortgage:          "Mortgage present",
		CategorySeizure:           "Seizure/provisional seizure",
		CategoryPriorLease:        "Prior lease holders",
		CategoryDebtExceeded:      "Exceeds safe debt ratio",
		CategoryDebtWarning:       "Approaching safe debt ratio",
	},
}

var levelLabels = map[domain.Locale]map[domain.RiskLevel]string{
	domain.LocaleKO: {
		domain.LevelSafe:    "안전",
		domain.LevelCaution: "주의",
		domain.LevelDanger:  "위험",
		domain.LevelUnknown: "분석 불가",
	},
	domain.LocaleEN: {
		domain.LevelSafe:    "SAFE",
		domain.LevelCaution: "CAUTION",
		domain.LevelDanger:  "DANGER",
		domain.LevelUnknown: "UNABLE TO ANALYZE",
	},
}

var recommendations = map[domain.Locale]map[domain.RiskLevel]string{
	domain.LocaleKO: {
		domain.LevelDanger:  "계약을 권장하지 않습니다.",
		domain.LevelCaution: "전세보증보험 가입 필수.",
		domain.LevelSafe:    "대체로 안전하나 보험 가입 권장.",
		domain.LevelUnknown: "문서를 분석할 수 없습니다.",
	},
	domain.LocaleEN: {
		domain.LevelDanger:  "Signing this contract is not recommended.",
		domain.LevelCaution: "Deposit guarantee insurance is strongly recommended before signing.",
		domain.LevelSafe:    "Broadly safe; deposit insurance is still recommended as a precaution.",
		domain.LevelUnknown: "The document could not be analyzed.",
	},
}

// Recommendation returns the level-determined advice text.
func Recommendation(level domain.RiskLevel, locale domain.Locale) string {
	if r, ok := recommendations[locale][level]; ok {
		return r
	}
	return recommendations[domain.LocaleKO][level]
}

// SeverityLabel returns the localized label of a severity grade.
func SeverityLabel(sev domain.Severity, locale domain.Locale) string {
	if l, ok := severityLabels[locale][sev]; ok {
		return l
	}
	return string(sev)
}

// CategoryLabel returns the localized label of a finding category.
// Unknown categories (custom rules) fall back to the raw key.
func CategoryLabel(category string, locale domain.Locale) string {
	if l, ok := categoryLabels[locale][category]; ok {
		return l
	}
	return category
}

// LevelLabel returns the localized label of a verdict level.
func LevelLabel(level domain.RiskLevel, locale domain.Locale) string {
	if l, ok := levelLabels[locale][level]; ok {
		return l
	}
	return string(level)
}

// AssembleReport renders the verdict and cross-validation result into a
// human-readable markdown report. Cross-validation findings come first:
// "don't send money" warnings belong at the top. Empty sections are
// omitted entirely rather than rendered as bare headings. Never fails.
func AssembleReport(verdict domain.RiskVerdict, cross domain.CrossValidationResult, registry *domain.RegistryRecord, locale domain.Locale) string {
	text, ok := reportTexts[locale]
	if !ok {
		text = reportTexts[domain.LocaleKO]
	}

	var b strings.Builder
	b.WriteString(text.title + "\n\n")

	if verdict.Level == domain.LevelUnknown {
		b.WriteString(text.unableToAnalyze + "\n")
		return b.String()
	}

	if cross.Status == domain.CrossDone && len(cross.Issues) > 0 {
		b.WriteString(text.crossHeading + "\n")
		for _, issue := range cross.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
		if cross.Consistent {
			b.WriteString(text.crossVerified + "\n")
		} else {
			b.WriteString(text.crossWarning + "\n")
		}
		b.WriteString("\n" + text.crossHeuristic + "\n\n")
	}

	b.WriteString(text.riskHeading + "\n")
	fmt.Fprintf(&b, "- **%s**: %s\n", text.levelLabel, LevelLabel(verdict.Level, locale))
	fmt.Fprintf(&b, "- **%s**: %d%s\n", text.scoreLabel, verdict.Score, text.scoreSuffix)
	if verdict.EstimatedValue > 0 {
		fmt.Fprintf(&b, "- **%s**: ₩%s\n", text.valueLabel, formatWon(verdict.EstimatedValue))
	}

	if len(verdict.Findings) > 0 {
		b.WriteString("\n" + text.findingsHeading + "\n")
		for _, f := range verdict.Findings {
			fmt.Fprintf(&b, "- ⚠️ [%s] %s: %s\n",
				SeverityLabel(f.Severity, locale),
				CategoryLabel(f.Category, locale),
				f.Description)
		}
	} else {
		b.WriteString(text.noFindings + "\n")
	}

	b.WriteString("\n" + text.adviceHeading + "\n")
	b.WriteString(Recommendation(verdict.Level, locale) + "\n")

	return b.String()
}
