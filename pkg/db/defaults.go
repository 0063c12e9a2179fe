package db

// Default tag categories. The stored values are kept as-is so existing
// databases keep their grouping.
const (
	CategoryPhase  = "工程"
	CategoryTarget = "対象"
	CategoryNature = "性質"
)

type defaultTag struct {
	Name     string
	Category string
	Color    string
}

// defaultTags is the catalog seeded on initialization.
var defaultTags = []defaultTag{
	{"仕様整理", CategoryPhase, "#3B82F6"},
	{"要件定義", CategoryPhase, "#3B82F6"},
	{"設計", CategoryPhase, "#3B82F6"},
	{"実装", CategoryPhase, "#10B981"},
	{"テスト", CategoryPhase, "#F59E0B"},
	{"リファクタ", CategoryPhase, "#8B5CF6"},
	{"バグ修正", CategoryPhase, "#EF4444"},
	{"ドキュメント", CategoryPhase, "#6B7280"},

	{"UI", CategoryTarget, "#EC4899"},
	{"API", CategoryTarget, "#14B8A6"},
	{"DB", CategoryTarget, "#F97316"},
	{"認証", CategoryTarget, "#8B5CF6"},
	{"パフォーマンス", CategoryTarget, "#EAB308"},
	{"セキュリティ", CategoryTarget, "#DC2626"},
	{"CI/CD", CategoryTarget, "#059669"},
	{"インフラ", CategoryTarget, "#0EA5E9"},

	{"調査", CategoryNature, "#06B6D4"},
	{"メモ", CategoryNature, "#64748B"},
	{"相談", CategoryNature, "#A855F7"},
	{"依頼", CategoryNature, "#F97316"},
	{"決定事項", CategoryNature, "#10B981"},
	{"共有", CategoryNature, "#0EA5E9"},
}
