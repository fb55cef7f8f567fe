package server

//
// package.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/samber/do/v2"
)

var Package = do.Package(
	do.Lazy(New),
	do.Lazy(NewMgmt),
)
