package ocr

import (
	"encoding/base64"
	"strings"

	"github.com/mcodersir/axkhan/internal/models"
)

// BasePrompt directs transcription and the script-specific corrections
const BasePrompt = `You are performing OCR (Optical Character Recognition) on an image.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Line breaks and paragraph structure
- Lists, numbering and indentation
- Table rows and columns (one row per line, cells separated by " | ")
- Punctuation and digits in their original script (Persian, Arabic or Latin)

CORRECTION RULES FOR RIGHT-TO-LEFT SCRIPTS (Persian, Arabic, Urdu):
1. OCR often fuses grammatical suffixes and prefixes onto the word they belong to, or splits them with a plain space.
   Separate them from the stem with a ZERO WIDTH NON-JOINER (U+200C), never with a space and never fused.
   Persian suffixes: ها، های، هایی، تر، ترین، ام، ات، اش، ایم، اید، اند (after a word ending in ه)، ای (after a word ending in ه)
   Persian prefixes: می، نمی
   Examples: "کتابها" -> "کتاب‌ها", "بزرگترین" -> "بزرگ‌ترین", "می رود" -> "می‌رود", "خانه ای" -> "خانه‌ای"
2. Do not insert a joiner inside a word where none belongs, and do not remove joiners that are already correct.
3. Use the Persian forms ی and ک in Persian text, not the Arabic ي and ك.
4. Keep Latin words, numbers and URLs inside right-to-left text in their original order.

GENERAL CORRECTION:
- Fix obvious spelling mistakes introduced by recognition (misread or dropped letters) in every language,
  but never rephrase, translate, summarize or reorder the text.
- If text is partially obscured or illegible, transcribe what you can see and use [?] for illegible portions.

LAYOUT:
- Preserve the reading order and the original line breaks of the image.
- Keep blank lines between separate blocks of text.`

// outputDirective is a hint only; replies are used as returned
const outputDirective = `OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The image contains:",
do not wrap the text in quotes or code fences, and do not add any commentary before or after it.`

const (
	customHeader = "### USER INSTRUCTIONS (HIGHER PRIORITY)\nThe following instructions come from the user. Where they conflict with the rules above, follow these instead:"
	customFooter = "### END OF USER INSTRUCTIONS"
)

// BuildPrompt appends trimmed custom instructions to basePrompt as a
// delimited block, then the output directive. An empty basePrompt uses
// BasePrompt.
func BuildPrompt(customInstructions, basePrompt string) string {
	if strings.TrimSpace(basePrompt) == "" {
		basePrompt = BasePrompt
	}

	parts := []string{strings.TrimSpace(basePrompt)}
	if custom := strings.TrimSpace(customInstructions); custom != "" {
		parts = append(parts, customHeader+"\n"+custom+"\n"+customFooter)
	}
	parts = append(parts, outputDirective)
	return strings.Join(parts, "\n\n")
}

// Build assembles a new request for image. Payload bytes that are
// themselves a textual data URI are sent as their encoded body.
func Build(image models.ImagePayload, customInstructions, basePrompt, model string) models.ExtractionRequest {
	encoded, mimeType := encodePayload(image)
	return models.ExtractionRequest{
		ImageBase64: encoded,
		MimeType:    mimeType,
		Prompt:      BuildPrompt(customInstructions, basePrompt),
		Model:       model,
	}
}

func encodePayload(image models.ImagePayload) (string, string) {
	if uriMime, body, ok := SplitDataURI(string(image.Bytes)); ok {
		mimeType := image.MimeType
		if mimeType == "" {
			mimeType = uriMime
		}
		return body, mimeType
	}
	return base64.StdEncoding.EncodeToString(image.Bytes), image.MimeType
}

// StripDataURI returns the encoded body of a data URI, or s unchanged
// when it has no data URI prefix
func StripDataURI(s string) string {
	if _, body, ok := SplitDataURI(s); ok {
		return body
	}
	return s
}

// SplitDataURI splits "data:<mime>;base64,<body>" into mime type and body
func SplitDataURI(s string) (string, string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), "data:") {
		return "", "", false
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return "", "", false
	}
	meta := s[len("data:"):comma]
	mimeType, _, _ := strings.Cut(meta, ";")
	return strings.ToLower(mimeType), s[comma+1:], true
}
