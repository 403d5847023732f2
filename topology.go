package rediskit

import (
	"net"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NodeInfo describes one cluster node. The zero value is the "empty
// descriptor" returned when a lookup fails or no node matches.
type NodeInfo struct {
	ID       string
	Addr     string // "host:port"
	Host     string
	Port     int
	Flags    []string // raw node flags ("master", "fail?", ...)
	Role     string   // "master" or "replica"
	MasterID string   // for replicas; empty on masters
}

// SlotRange maps one inclusive hash-slot range to the nodes serving it.
// Nodes[0] is the range's primary.
type SlotRange struct {
	Start int64
	End   int64
	Nodes []NodeInfo
}

func slotRangesFromRedis(slots []redis.ClusterSlot) []SlotRange {
	out := make([]SlotRange, len(slots))
	for i, s := range slots {
		nodes := make([]NodeInfo, len(s.Nodes))
		for j, n := range s.Nodes {
			nodes[j] = nodeFromAddr(n.ID, n.Addr)
		}
		out[i] = SlotRange{Start: int64(s.Start), End: int64(s.End), Nodes: nodes}
	}
	return out
}

func nodeFromAddr(id, addr string) NodeInfo {
	ni := NodeInfo{ID: id, Addr: addr}
	if host, portStr, err := net.SplitHostPort(addr); err == nil {
		ni.Host = host
		ni.Port, _ = strconv.Atoi(portStr)
	}
	return ni
}

// parseClusterNodes turns the raw CLUSTER NODES text into node descriptors.
// Line format (one node per line):
//
//	<id> <ip:port@cport> <flags> <master-id> <ping> <pong> <epoch> <state> [<slot> ...]
//
// Lines that do not carry at least the first four columns are skipped.
func parseClusterNodes(raw string) []NodeInfo {
	var out []NodeInfo
	for _, line := range strings.Split(raw, "\n") {
		f := strings.Fields(line)
		if len(f) < 4 {
			continue
		}
		addr := f[1]
		if at := strings.IndexByte(addr, '@'); at >= 0 {
			addr = addr[:at]
		}
		// a trailing ",hostname" may follow the cluster bus port
		if comma := strings.IndexByte(addr, ','); comma >= 0 {
			addr = addr[:comma]
		}

		ni := nodeFromAddr(f[0], addr)
		ni.Flags = strings.Split(f[2], ",")
		ni.Role = "replica"
		for _, fl := range ni.Flags {
			if fl == "master" {
				ni.Role = "master"
				break
			}
		}
		if f[3] != "-" {
			ni.MasterID = f[3]
		}
		out = append(out, ni)
	}
	return out
}
