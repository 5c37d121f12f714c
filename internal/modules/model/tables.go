package model

// Tables lists every persisted model in dependency order, for AutoMigrate.
func Tables() []any {
	return []any{
		&User{},
		&Project{},
		&PlantCode{},
		&Sequence{},
		&Plant{},
		&Visitor{},
		&VisitorFlowerType{},
		&VisitorResource{},
	}
}
