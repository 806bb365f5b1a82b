package simplepublishing

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Content analysis heuristics. All functions here are pure over the raw
// markup string; nothing reads or writes persistent state.

const (
	// WordsPerMinute is the assumed average reading speed.
	WordsPerMinute = 200

	imageReadSeconds     = 12
	codeBlockReadSeconds = 30
	headerReadSeconds    = 3
)

// Reading level buckets, ordered easiest to hardest.
const (
	ReadingLevelVeryEasy        = "Very Easy"
	ReadingLevelEasy            = "Easy"
	ReadingLevelFairlyEasy      = "Fairly Easy"
	ReadingLevelStandard        = "Standard"
	ReadingLevelFairlyDifficult = "Fairly Difficult"
	ReadingLevelDifficult       = "Difficult"
	ReadingLevelVeryDifficult   = "Very Difficult"
	ReadingLevelUnknown         = "Unknown"
)

var (
	tagTokenPattern   = regexp.MustCompile(`#(\w+)`)
	sentenceSplitter  = regexp.MustCompile(`[.!?]+`)
	fencedBlockStrip  = regexp.MustCompile("(?s)```.*?```")
	imageStrip        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkStrip         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldStrip         = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicStrip       = regexp.MustCompile(`\*([^*]+)\*`)
	inlineCodeStrip   = regexp.MustCompile("`([^`]+)`")
	headerPrefixStrip = regexp.MustCompile(`(?m)^#+\s*`)
)

// ReadTime estimates reading time in minutes: word count at WordsPerMinute
// floor-bounded at one minute, plus 12s per image reference, 30s per fenced
// code block, and 3s per header line, added as whole minutes.
func ReadTime(content string) int {
	if strings.TrimSpace(content) == "" {
		return 1
	}

	wordCount := len(strings.Fields(content))
	baseMinutes := wordCount / WordsPerMinute
	if baseMinutes < 1 {
		baseMinutes = 1
	}

	additionalSeconds := countImages(content)*imageReadSeconds +
		countCodeBlocks(content)*codeBlockReadSeconds +
		countHeaderLines(content)*headerReadSeconds

	return baseMinutes + additionalSeconds/60
}

// ReadTimeForType scales ReadTime by a content-type factor: technical and
// tutorial content x1.5, research and academic x2.0, everything else x1.0.
func ReadTimeForType(content, contentType string) int {
	base := ReadTime(content)

	switch strings.ToLower(contentType) {
	case "technical", "tutorial":
		return int(float64(base) * 1.5)
	case "research", "academic":
		return int(float64(base) * 2.0)
	default:
		return base
	}
}

// ExtractSummary strips markup formatting and greedily concatenates leading
// sentences while the result stays within maxLength, ending with a period.
func ExtractSummary(content string, maxLength int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	plain := fencedBlockStrip.ReplaceAllString(content, "")
	plain = imageStrip.ReplaceAllString(plain, "")
	plain = linkStrip.ReplaceAllString(plain, "$1")
	plain = boldStrip.ReplaceAllString(plain, "$1")
	plain = italicStrip.ReplaceAllString(plain, "$1")
	plain = inlineCodeStrip.ReplaceAllString(plain, "$1")
	plain = headerPrefixStrip.ReplaceAllString(plain, "")

	var summary strings.Builder
	for _, sentence := range sentenceSplitter.Split(plain, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if summary.Len()+len(sentence)+1 > maxLength {
			break
		}
		if summary.Len() > 0 {
			summary.WriteString(". ")
		}
		summary.WriteString(sentence)
	}

	result := summary.String()
	if result != "" && !strings.HasSuffix(result, ".") {
		result += "."
	}
	return result
}

// ExtractTags collects #word tokens (letters, digits, underscore; at most 50
// characters), case-folded and deduplicated, in sorted order.
func ExtractTags(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	for _, match := range tagTokenPattern.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(match[1])
		if len(tag) == 0 || len(tag) > 50 {
			continue
		}
		seen[tag] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// QualityScore scores content structure on a 0-100 scale as a weighted sum of
// capped contributions: words, paragraphs, headers, images, code blocks,
// external links, list items, and bold/italic markers.
func QualityScore(content string) float64 {
	if strings.TrimSpace(content) == "" {
		return 0.0
	}

	score := 0.0

	wordCount := len(strings.Fields(content))
	score += math.Min(25, float64(wordCount/10))

	paragraphCount := len(strings.Split(content, "\n\n"))
	score += math.Min(15, float64(paragraphCount*2))

	score += math.Min(15, float64(countHeaderLines(content)*3))
	score += math.Min(10, float64(countImages(content)*2))
	score += math.Min(10, float64(countCodeBlocks(content)*2))

	linkCount := strings.Count(content, "](http")
	score += math.Min(10, float64(linkCount*2))

	listCount := strings.Count(content, "\n- ") + strings.Count(content, "\n* ")
	score += math.Min(10, float64(listCount))

	formattingCount := strings.Count(content, "**") + strings.Count(content, "*")
	score += math.Min(5, float64(formattingCount/2))

	return math.Min(100, score)
}

// ReadingLevel maps a Flesch Reading Ease score onto seven ordered buckets.
// Syllables are approximated by counting vowel-group transitions.
func ReadingLevel(content string) string {
	if strings.TrimSpace(content) == "" {
		return ReadingLevelUnknown
	}

	sentences := 0
	for _, s := range sentenceSplitter.Split(content, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	words := len(strings.Fields(content))
	if sentences == 0 || words == 0 {
		return ReadingLevelUnknown
	}

	syllables := countSyllables(content)
	flesch := 206.835 -
		1.015*(float64(words)/float64(sentences)) -
		84.6*(float64(syllables)/float64(words))

	switch {
	case flesch >= 90:
		return ReadingLevelVeryEasy
	case flesch >= 80:
		return ReadingLevelEasy
	case flesch >= 70:
		return ReadingLevelFairlyEasy
	case flesch >= 60:
		return ReadingLevelStandard
	case flesch >= 50:
		return ReadingLevelFairlyDifficult
	case flesch >= 30:
		return ReadingLevelDifficult
	default:
		return ReadingLevelVeryDifficult
	}
}

// EngagementRate computes (likes + 2*comments + 3*shares) / views as a
// percentage, defined as 0 when there are no views.
func EngagementRate(views, likes, comments, shares int) float64 {
	if views == 0 {
		return 0.0
	}
	engagement := float64(likes) + 2.0*float64(comments) + 3.0*float64(shares)
	return engagement / float64(views) * 100
}

// FormatViewCount renders a view counter for display: 999 -> "999",
// 1500 -> "1.5K", 1500000 -> "1.5M".
func FormatViewCount(viewCount int) string {
	switch {
	case viewCount < 1000:
		return fmt.Sprintf("%d", viewCount)
	case viewCount < 1000000:
		return fmt.Sprintf("%.1fK", float64(viewCount)/1000.0)
	default:
		return fmt.Sprintf("%.1fM", float64(viewCount)/1000000.0)
	}
}

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	htmlPolicy = newHTMLPolicy()
)

func newHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
	return policy
}

// RenderHTML converts article markup to sanitized HTML for display. Render
// failures fall back to the sanitized source text.
func RenderHTML(content string) string {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(content), &buf); err != nil {
		return htmlPolicy.Sanitize(content)
	}
	return string(htmlPolicy.SanitizeBytes(buf.Bytes()))
}

// Counting helpers.

func countImages(content string) int {
	return strings.Count(content, "![")
}

func countCodeBlocks(content string) int {
	// Each fenced block has an opening and a closing fence.
	return strings.Count(content, "```") / 2
}

func countHeaderLines(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			count++
		}
	}
	return count
}

func countSyllables(text string) int {
	syllables := 0
	prevVowel := false
	for _, c := range strings.ToLower(text) {
		isVowel := strings.ContainsRune("aeiouy", c)
		if isVowel && !prevVowel {
			syllables++
		}
		prevVowel = isVowel
	}
	if syllables < 1 {
		return 1
	}
	return syllables
}
