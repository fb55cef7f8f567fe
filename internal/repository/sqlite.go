package repository

//
// sqlite.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

type SqliteRepository struct{}

func NewSqliteRepository() SqliteRepository {
	return SqliteRepository{}
}
