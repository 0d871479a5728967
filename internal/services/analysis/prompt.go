package analysis

import (
	"fmt"
)

// systemPersona is the fixed system-role message for every analysis call
const systemPersona = "You are a financial analyst who evaluates news articles " +
	"for their impact on company valuation. You respond only with a single " +
	"JSON object and no surrounding prose."

// promptTemplate requests a JSON object with the exact, enumerated field
// set the pipeline persists. Timestamps are pinned to one format so the
// store's nullable timestamp columns parse deterministically.
const promptTemplate = `Analyze the following news article and respond with a JSON object containing exactly these fields:

- "Company Name": the primary company the article is about
- "Article Title": the article's title
- "Published Timestamp": publication time as "YYYY-MM-DD HH:MM" in UTC, or "" if not stated
- "Modified Timestamp": last-modified time as "YYYY-MM-DD HH:MM" in UTC, or "" if not stated
- "News Source": the publishing outlet
- "Article Summary": a concise summary of the article
- "Sentiment Score": a number from -10 (extremely negative for the company) to +10 (extremely positive)
- "Sentiment Score Reasoning": why you assigned that score
- "Company Valuation Significance": whether the article is significant for the company's valuation
- "Company Valuation Significance Reasoning": why or why not
- "Explicit Company Impacts": impacts on the company stated explicitly in the article
- "Implicit Industry Impacts": implied impacts on the company's industry
- "Implicit Impact Peer Companies": a list of peer companies plausibly affected

Article text:

%s`

// buildPrompt embeds the article text in the fixed-shape instruction prompt
func buildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
