package index

// Entry is one signature-index hit: the dictionary position of a word and
// its sorted-letter signature.
type Entry struct {
	Position  int
	Signature string
}

// SignatureKey addresses a signature bucket.
type SignatureKey struct {
	Length    int
	Signature string
}

// Stats summarises a built index.
type Stats struct {
	Words      int `json:"words"`
	Lengths    int `json:"lengths"`
	Signatures int `json:"signatures"`
	LongestLen int `json:"longest_length"`
}
