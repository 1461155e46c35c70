package models

// All lists every persisted model in dependency order (referenced tables first).
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&UserLog{},
		&Recommendation{},
	}
}
