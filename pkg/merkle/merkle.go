// Package merkle implements the append-only, paired-insertion sparse
// Merkle tree of note commitments, and its in-circuit membership gadget
// (gadget.go). Leaves enter strictly in pairs; the tree keeps only the
// leaf list, a per-level cache of the current left child, and the running
// root, so a companion on-chain contract can reproduce every root update
// without storing the whole structure.
package merkle

import (
	"fmt"
	"math/big"

	"github.com/vortexlabs/vortex-core/config"
	"github.com/vortexlabs/vortex-core/pkg/field"
	"github.com/vortexlabs/vortex-core/pkg/poseidon"
)

func hashPair(left, right *big.Int) (*big.Int, error) {
	return poseidon.Hash2(left, right)
}

func errOddLeaves(n int) error {
	return fmt.Errorf("merkle: bulk insert requires an even leaf count, got %d", n)
}

// Path is a Merkle membership path of fixed length H: level 0 holds the two
// sibling leaves at the bottom of the tree; levels 1..H-1 hold the two
// children of the ancestor node on the path from leaf to root, with the
// running hash always on whichever side equals it (see CalculateRoot).
type Path [config.MerkleTreeLevels][2]*big.Int

// CalculateRoot recomputes the root implied by leaf and the path: at each
// level the running hash is matched against the stored left entry to
// decide which side it sits on, the same walk RootHash performs in-circuit.
func (p *Path) CalculateRoot(leaf *big.Int) (*big.Int, error) {
	prev := new(big.Int).Set(leaf)

	for i := range p {
		left, right := p[i][0], p[i][1]
		if left == nil || right == nil {
			return nil, fmt.Errorf("merkle: path level %d is empty", i)
		}

		var l, r *big.Int
		if prev.Cmp(left) == 0 {
			l, r = prev, right
		} else {
			l, r = left, prev
		}

		h, err := poseidon.Hash2(l, r)
		if err != nil {
			return nil, fmt.Errorf("merkle: level %d hash: %w", i, err)
		}
		prev = h
	}

	return prev, nil
}

// CheckMembership reports whether leaf belongs to the tree with the given
// root, per this path.
func (p *Path) CheckMembership(root, leaf *big.Int) (bool, error) {
	computed, err := p.CalculateRoot(leaf)
	if err != nil {
		return false, err
	}
	return computed.Cmp(root) == 0, nil
}

// Tree is the native, single-owner, single-threaded sparse Merkle tree.
// Concurrent insertion is undefined; callers needing a concurrent facade
// must serialize all mutations externally.
type Tree struct {
	levels      int
	leaves      []*big.Int
	subtrees    []*big.Int // subtrees[i] = cached "current left child" at level i
	emptyHashes []*big.Int // emptyHashes[0] = ZeroValue; emptyHashes[i] = Poseidon2(emptyHashes[i-1], emptyHashes[i-1])
	root        *big.Int
}

// New builds an empty tree of the protocol's fixed height
// (config.MerkleTreeLevels), seeded with config.ZeroValue as the empty leaf.
func New() (*Tree, error) {
	zero, err := field.ParseDecOrHex(config.ZeroValue)
	if err != nil {
		return nil, fmt.Errorf("merkle: parse ZeroValue: %w", err)
	}
	return NewWithParams(config.MerkleTreeLevels, zero)
}

// NewWithParams builds an empty tree of the given height, seeded with an
// explicit empty-leaf value. Exposed for tests that need small trees.
func NewWithParams(levels int, emptyLeaf *big.Int) (*Tree, error) {
	if levels <= 0 {
		return nil, fmt.Errorf("merkle: levels must be positive, got %d", levels)
	}

	emptyHashes := make([]*big.Int, levels)
	emptyHashes[0] = new(big.Int).Set(emptyLeaf)
	for i := 1; i < levels; i++ {
		h, err := poseidon.Hash2(emptyHashes[i-1], emptyHashes[i-1])
		if err != nil {
			return nil, fmt.Errorf("merkle: empty hash level %d: %w", i, err)
		}
		emptyHashes[i] = h
	}

	subtrees := make([]*big.Int, levels)
	copy(subtrees, emptyHashes)

	return &Tree{
		levels:      levels,
		leaves:      nil,
		subtrees:    subtrees,
		emptyHashes: emptyHashes,
		root:        new(big.Int).Set(emptyHashes[levels-1]),
	}, nil
}

// Levels returns the tree's fixed height H.
func (t *Tree) Levels() int { return t.levels }

// Root returns the current root.
func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.root) }

// Len returns the number of leaves inserted so far.
func (t *Tree) Len() int { return len(t.leaves) }

// Capacity returns 2^H, the maximum number of leaves this tree can hold.
func (t *Tree) Capacity() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(t.levels))
}

// Leaves returns the ordered leaf list. Callers must not mutate the
// returned slice's elements.
func (t *Tree) Leaves() []*big.Int { return t.leaves }

// InsertPair appends leaf1 then leaf2 and updates subtrees/root following
// the exact recurrence a companion on-chain contract reproduces: it never
// stores the whole tree, only the running hash and the per-level cache.
func (t *Tree) InsertPair(leaf1, leaf2 *big.Int) error {
	pairHash, err := poseidon.Hash2(leaf1, leaf2)
	if err != nil {
		return fmt.Errorf("merkle: level 0 hash: %w", err)
	}
	return t.insertHashedPair(leaf1, leaf2, pairHash)
}

// insertHashedPair runs the insertion recurrence with the pair's level-0
// hash already computed, so bulk constructors can hash pairs ahead of time
// (concurrent.go) without repeating the work here.
func (t *Tree) insertHashedPair(leaf1, leaf2, pairHash *big.Int) error {
	maxLeaves := t.Capacity()
	if new(big.Int).Add(big.NewInt(int64(len(t.leaves))), big.NewInt(2)).Cmp(maxLeaves) > 0 {
		return fmt.Errorf("merkle: tree is full (capacity %s)", maxLeaves.String())
	}

	t.leaves = append(t.leaves, leaf1, leaf2)

	currentIndex := (len(t.leaves) - 2) / 2
	currentHash := pairHash

	for i := 1; i < t.levels; i++ {
		var left, right *big.Int
		if currentIndex%2 == 0 {
			left, right = currentHash, t.emptyHashes[i]
			t.subtrees[i] = currentHash
		} else {
			left, right = t.subtrees[i], currentHash
		}

		h, err := poseidon.Hash2(left, right)
		if err != nil {
			return fmt.Errorf("merkle: level %d hash: %w", i, err)
		}
		currentHash = h
		currentIndex /= 2
	}

	t.root = currentHash
	return nil
}

// Insert is InsertPair(leaf, emptyHashes[0]).
func (t *Tree) Insert(leaf *big.Int) error {
	return t.InsertPair(leaf, t.emptyHashes[0])
}

// BulkInsert inserts an even-length leaf slice two at a time, in order.
func (t *Tree) BulkInsert(leaves []*big.Int) error {
	if len(leaves)%2 != 0 {
		return errOddLeaves(len(leaves))
	}
	for i := 0; i < len(leaves); i += 2 {
		if err := t.InsertPair(leaves[i], leaves[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// GenerateMembershipProof builds the Path for the leaf at index by
// replaying the insertion recurrence from scratch over all pair hashes,
// tracking for each level the hash at each horizontal position before it
// is combined with its sibling. This is O(numPairs * H^2): the tree only
// caches the running root, not the whole structure, so a proof is rebuilt
// on demand.
func (t *Tree) GenerateMembershipProof(index int) (Path, error) {
	var path Path
	if index < 0 || index >= len(t.leaves) {
		return path, fmt.Errorf("merkle: index %d out of bounds (tree has %d leaves)", index, len(t.leaves))
	}
	if t.levels != config.MerkleTreeLevels {
		return path, fmt.Errorf("merkle: GenerateMembershipProof requires a height-%d tree, got %d", config.MerkleTreeLevels, t.levels)
	}

	pairIndex := index / 2
	leafLeft := t.leaves[pairIndex*2]
	var leafRight *big.Int
	if pairIndex*2+1 < len(t.leaves) {
		leafRight = t.leaves[pairIndex*2+1]
	} else {
		leafRight = t.emptyHashes[0]
	}
	path[0] = [2]*big.Int{leafLeft, leafRight}

	currentHash, err := poseidon.Hash2(leafLeft, leafRight)
	if err != nil {
		return path, fmt.Errorf("merkle: level 0 pair hash: %w", err)
	}
	currentIndex := pairIndex

	numPairs := (len(t.leaves) + 1) / 2
	pairHashes := make([]*big.Int, numPairs)
	for p := 0; p < numPairs; p++ {
		left := t.leaves[p*2]
		var right *big.Int
		if p*2+1 < len(t.leaves) {
			right = t.leaves[p*2+1]
		} else {
			right = t.emptyHashes[0]
		}
		h, err := poseidon.Hash2(left, right)
		if err != nil {
			return path, fmt.Errorf("merkle: pair %d hash: %w", p, err)
		}
		pairHashes[p] = h
	}

	// levelChildHashes[level-1] holds, for the given level, the running hash
	// at each horizontal position before it was combined with its sibling.
	levelChildHashes := make([][]*big.Int, t.levels-1)

	for level := 1; level < t.levels; level++ {
		levelSubtrees := make([]*big.Int, t.levels)
		copy(levelSubtrees, t.emptyHashes)

		var childHashes []*big.Int

		for pairIdx, pairHash := range pairHashes {
			pos := pairIdx
			hash := pairHash

			for inner := 1; inner < level; inner++ {
				isLeft := pos%2 == 0
				var left, right *big.Int
				if isLeft {
					left, right = hash, t.emptyHashes[inner]
					levelSubtrees[inner] = hash
				} else {
					left, right = levelSubtrees[inner], hash
				}
				h, err := poseidon.Hash2(left, right)
				if err != nil {
					return path, fmt.Errorf("merkle: replay level %d pair %d: %w", inner, pairIdx, err)
				}
				hash = h
				pos /= 2
			}

			levelPos := pairIdx >> uint(level-1)
			for len(childHashes) <= levelPos {
				childHashes = append(childHashes, t.emptyHashes[level])
			}
			childHashes[levelPos] = hash
		}

		levelChildHashes[level-1] = childHashes
	}

	for level := 1; level < t.levels; level++ {
		isLeft := currentIndex%2 == 0
		childHashes := levelChildHashes[level-1]

		var sibling *big.Int
		if isLeft {
			siblingPos := currentIndex + 1
			if siblingPos < len(childHashes) {
				sibling = childHashes[siblingPos]
			} else {
				sibling = t.emptyHashes[level]
			}
		} else {
			if currentIndex > 0 && currentIndex-1 < len(childHashes) {
				sibling = childHashes[currentIndex-1]
			} else {
				sibling = t.subtrees[level]
			}
		}

		var left, right *big.Int
		if isLeft {
			left, right = currentHash, sibling
		} else {
			left, right = sibling, currentHash
		}
		path[level] = [2]*big.Int{left, right}

		h, err := poseidon.Hash2(left, right)
		if err != nil {
			return path, fmt.Errorf("merkle: extract level %d: %w", level, err)
		}
		currentHash = h
		currentIndex /= 2
	}

	return path, nil
}
