// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package ledger

// CallKind names a dispatchable ledger operation.
type CallKind string

const (
	CallInsertTask           CallKind = "insert_task"
	CallClearTasks           CallKind = "clear_tasks"
	CallSubmitAgentSigned    CallKind = "submit_agent_signed"
	CallSubmitNumberSigned   CallKind = "submit_number_signed"
	CallSubmitNumberUnsigned CallKind = "submit_number_unsigned"
)

// Call is a proposed ledger operation. Only the fields relevant to Kind are set.
type Call struct {
	Kind   CallKind
	TaskID uint32 // insert_task
	Target string // insert_task
	Header string // insert_task
	Agent  string // submit_agent_signed
	Number uint64 // submit_number_signed / submit_number_unsigned
}

// InsertTask builds an insert_task call.
func InsertTask(id uint32, target, header string) Call {
	return Call{Kind: CallInsertTask, TaskID: id, Target: target, Header: header}
}

// ClearTasks builds a clear_tasks call.
func ClearTasks() Call {
	return Call{Kind: CallClearTasks}
}

// SubmitAgentSigned builds a submit_agent_signed call.
func SubmitAgentSigned(agent string) Call {
	return Call{Kind: CallSubmitAgentSigned, Agent: agent}
}

// SubmitNumberSigned builds a submit_number_signed call.
func SubmitNumberSigned(number uint64) Call {
	return Call{Kind: CallSubmitNumberSigned, Number: number}
}

// SubmitNumberUnsigned builds a submit_number_unsigned call.
func SubmitNumberUnsigned(number uint64) Call {
	return Call{Kind: CallSubmitNumberUnsigned, Number: number}
}

// Origin identifies who dispatched a call. Signed origins carry the account;
// unsigned calls use NoneOrigin.
type Origin struct {
	Signed  bool
	Account string
}

// SignedOrigin builds an origin for a call signed by account.
func SignedOrigin(account string) Origin {
	return Origin{Signed: true, Account: account}
}

// NoneOrigin builds the unsigned origin.
func NoneOrigin() Origin {
	return Origin{}
}

func ensureSigned(origin Origin) error {
	if !origin.Signed || origin.Account == "" {
		return ErrBadOrigin
	}
	return nil
}

func ensureNone(origin Origin) error {
	if origin.Signed {
		return ErrBadOrigin
	}
	return nil
}
