package gemini

import (
	"github.com/samber/lo"
	"google.golang.org/genai"
)

// FirstInlineData は、最初の候補のパーツを順に調べ、最初に見つかったインラインデータを返します
// 他の候補と残りのパーツは参照しません。見つからない場合は false を返します
func FirstInlineData(resp *genai.GenerateContentResponse) (*genai.Blob, bool) {
	parts := firstCandidateParts(resp)
	part, ok := lo.Find(parts, hasInlineData)
	if !ok {
		return nil, false
	}
	return part.InlineData, true
}

// CountInlineData は、最初の候補に含まれるインラインデータ付きパーツの数を返します
func CountInlineData(resp *genai.GenerateContentResponse) int {
	return lo.CountBy(firstCandidateParts(resp), hasInlineData)
}

func firstCandidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil
	}
	return candidate.Content.Parts
}

func hasInlineData(part *genai.Part) bool {
	return part != nil && part.InlineData != nil
}

func candidateCount(resp *genai.GenerateContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Candidates)
}
