package analyzer

import "math/rand/v2"

// Strategy is one persuasion angle for the pitch prompt. The choice only
// varies prompt wording, never control flow, so the eventual catchphrase and
// description tone differ between requests for the same book.
type Strategy struct {
	Angle       string
	Instruction string
}

// DefaultStrategies is the fixed set of persuasion angles, one of which is
// chosen per request.
var DefaultStrategies = []Strategy{
	{
		Angle:       "desire",
		Instruction: "読者の「こうなりたい」という理想像に直接訴えかけ、この本を読んだ後の輝かしい未来を具体的に想像させてください。",
	},
	{
		Angle:       "fear",
		Instruction: "この本を読まずにいることで失い続けている時間やチャンスをやんわりと示し、今すぐ行動すべき理由を伝えてください。",
	},
	{
		Angle:       "authority",
		Instruction: "この分野での本書の評価や著者の実績を匂わせ、「読んでいる人は皆知っている」という信頼感を演出してください。",
	},
	{
		Angle:       "empathy",
		Instruction: "読者が今まさに抱えている悩みや焦りに深く共感し、この本が寄り添ってくれる存在であることを伝えてください。",
	},
	{
		Angle:       "urgency",
		Instruction: "「今この瞬間に読み始めた人から変わっていく」という切迫感を演出し、後回しにしない理由を作ってください。",
	},
}

// Selector picks one strategy from the list. Injectable so tests can pin a
// specific strategy deterministically.
type Selector func(strategies []Strategy) Strategy

// RandomSelector picks a strategy uniformly at random.
func RandomSelector(strategies []Strategy) Strategy {
	return strategies[rand.N(len(strategies))]
}
