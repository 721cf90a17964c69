package models

// MatchIndicators records which fields of a voter/contribution pair are
// equivalent after normalization.
type MatchIndicators struct {
	Address   bool `json:"address_match" db:"address_match"`
	Zip       bool `json:"zip_match" db:"zip_match"`
	FirstName bool `json:"first_name_match" db:"first_name_match"`
	LastName  bool `json:"last_name_match" db:"last_name_match"`
}

// MatchPair is a voter and a contribution admitted by the match policy.
type MatchPair struct {
	Voter        CureListVoter      `json:"voter" db:"voter"`
	Contribution ContributionRecord `json:"contribution" db:"contribution"`
	MatchIndicators
	// Rules lists the policy rules that admitted the pair.
	Rules []string `json:"rules" db:"-"`
}

// ContributionMatch is one contribution in a voter's summary.
type ContributionMatch struct {
	Contribution ContributionRecord `json:"contribution"`
	MatchIndicators
	Rules []string `json:"rules"`
}

// MatchSummary groups every matched contribution under its voter, newest
// contribution first.
type MatchSummary struct {
	Voter         CureListVoter       `json:"voter"`
	Contributions []ContributionMatch `json:"contributions"`
}
