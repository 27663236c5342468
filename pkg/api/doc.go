// Package api defines the request and response messages of the spendwise.v1
// RPC services. Messages travel as JSON; amounts are encoded as numbers with
// two decimals and timestamps as Unix seconds.
package api
