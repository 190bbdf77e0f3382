// Package npc is the concurrency core: one worker goroutine per agent,
// supervised by a pool that routes commands, drains responses without
// blocking, restarts dead workers, and shuts the whole thing down once.
// Workers hold private snapshots of their agent and never touch the
// authoritative world state.
package npc

import (
	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

type CommandKind string

const (
	CmdUpdate    CommandKind = "update"
	CmdSetStatus CommandKind = "set_status"
	CmdGetAction CommandKind = "get_action"
	CmdGetDialog CommandKind = "get_dialog"
	CmdSuspend   CommandKind = "suspend"
	CmdUnsuspend CommandKind = "unsuspend"
	CmdShutdown  CommandKind = "shutdown"
)

// Command is one message into a worker. Only the fields relevant to Kind
// are populated.
type Command struct {
	Kind CommandKind

	Snapshot *world.Character // update
	Status   world.Status     // set_status

	View    protocol.WorldView // get_action
	History []string           // get_action, get_dialog
	Message string             // get_dialog
}

type ResponseKind string

const (
	RespAction ResponseKind = "action"
	RespDialog ResponseKind = "dialog"
	RespStatus ResponseKind = "status"
)

// Worker status strings carried by RespStatus responses.
const (
	StatusSuspended    = "suspended"
	StatusAcknowledged = "acknowledged"
)

// Response is one message out of a worker.
type Response struct {
	AgentID string
	Kind    ResponseKind

	Decision protocol.Decision // RespAction
	Dialog   string            // RespDialog
	Status   string            // RespStatus: "defeated", "suspended", "acknowledged"
}
