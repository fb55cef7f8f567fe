package main

//
// main.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/kmwlk/libsync/internal/cli"
)

func main() {
	cli.Main()
}
