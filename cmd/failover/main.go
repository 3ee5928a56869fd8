// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import "github.com/gogama/failover/internal/cli"

func main() {
	cli.Execute()
}
