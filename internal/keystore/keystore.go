// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package keystore exposes the one capability this worker consumes from the
// signing subsystem: which accounts the local process can sign for.
package keystore

// Keystore lists the locally held signing identities.
type Keystore struct {
	accounts []string
}

// New creates a keystore over the given local account IDs.
func New(accounts []string) *Keystore {
	return &Keystore{accounts: append([]string(nil), accounts...)}
}

// CanSign reports whether at least one local signing identity is available.
func (k *Keystore) CanSign() bool {
	return len(k.accounts) > 0
}

// Accounts returns the local signing identities, in configuration order.
func (k *Keystore) Accounts() []string {
	return append([]string(nil), k.accounts...)
}
