/*
Package session keeps one live canvas per canvas id.

Handlers look canvases up through a Manager instead of opening them directly, so
concurrent requests share the same graph store and connection slot. Opening a
canvas may seed and persist it; with a distributed locker configured, replicas
serialize that step per canvas id.
*/
package session
