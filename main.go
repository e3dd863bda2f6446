// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package main

import "github.com/Greenetwork/offchain-worker/cmd"

func main() {
	cmd.Execute()
}
