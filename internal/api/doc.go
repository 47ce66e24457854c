// Package api implements the JSON + SSE HTTP surface of the studio:
// bot profiles, the per-project editing workspace, preview handles, and
// the streaming chat endpoint that feeds extracted artifacts back into
// the workspace.
package api
