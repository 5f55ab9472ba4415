package variant

// HashMap is a fixed-bucket chained hash map from string key to *Variant,
// grounded on original_source/src/sail-common/hash_map.c. Used by rimage
// for per-image special-properties and by codec load/save options for the
// per-codec tuning map (spec section 3/4.2).
type HashMap struct {
	buckets [256][]entry
	size    int
}

type entry struct {
	key   string
	value *Variant
}

// NewHashMap returns an empty map with the fixed 256-bucket layout the
// source uses.
func NewHashMap() *HashMap {
	return &HashMap{}
}

func bucketOf(key string) uint8 {
	var h uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return uint8(h)
}

// Insert deep-copies v and stores it under key, replacing any existing
// entry (hash_map.c's insert-with-copy semantics).
func (m *HashMap) Insert(key string, v *Variant) {
	m.insert(key, v.Copy())
}

// InsertShallow moves v into the map without copying (hash_map.c's
// move-insert used when the caller relinquishes ownership).
func (m *HashMap) InsertShallow(key string, v *Variant) {
	m.insert(key, v)
}

func (m *HashMap) insert(key string, v *Variant) {
	b := bucketOf(key)
	for i, e := range m.buckets[b] {
		if e.key == key {
			m.buckets[b][i].value = v
			return
		}
	}
	m.buckets[b] = append(m.buckets[b], entry{key: key, value: v})
	m.size++
}

// Lookup returns the value stored under key, or nil, false if absent.
func (m *HashMap) Lookup(key string) (*Variant, bool) {
	b := bucketOf(key)
	for _, e := range m.buckets[b] {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Erase removes key from the map, a no-op if absent.
func (m *HashMap) Erase(key string) {
	b := bucketOf(key)
	bucket := m.buckets[b]
	for i, e := range bucket {
		if e.key == key {
			m.buckets[b] = append(bucket[:i], bucket[i+1:]...)
			m.size--
			return
		}
	}
}

// Size returns the number of stored entries.
func (m *HashMap) Size() int { return m.size }

// Each invokes fn for every entry, in unspecified bucket order, matching
// hash_map.c's traversal callback.
func (m *HashMap) Each(fn func(key string, v *Variant)) {
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			fn(e.key, e.value)
		}
	}
}

// Clone returns a deep copy of the whole map. The driver does not call it:
// codec sessions receive the caller's load/save options, tuning map
// included, without a copy.
func (m *HashMap) Clone() *HashMap {
	cp := NewHashMap()
	m.Each(func(key string, v *Variant) {
		cp.Insert(key, v)
	})
	return cp
}
