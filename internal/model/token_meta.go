package model

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// Token returns the immutable Token view of the metadata.
func (m TokenMeta) Token() (Token, error) {
	return NewToken(m.Address, m.Symbol, uint(m.Decimals))
}
