package usecase

import "sort"

// RoomSet is the immutable set of bookable rooms loaded at startup.
type RoomSet struct {
	ids    []int
	lookup map[int]struct{}
}

func NewRoomSet(ids []int) RoomSet {
	rs := RoomSet{lookup: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := rs.lookup[id]; dup {
			continue
		}
		rs.lookup[id] = struct{}{}
		rs.ids = append(rs.ids, id)
	}
	sort.Ints(rs.ids)
	return rs
}

func (rs RoomSet) Contains(id int) bool {
	_, ok := rs.lookup[id]
	return ok
}

// IDs returns the rooms in ascending order. The slice is a copy.
func (rs RoomSet) IDs() []int {
	out := make([]int, len(rs.ids))
	copy(out, rs.ids)
	return out
}

func (rs RoomSet) Len() int {
	return len(rs.ids)
}
