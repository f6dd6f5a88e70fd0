package object_test

import (
	"testing"
	"time"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitRoundTrip(t *testing.T) {
	t.Parallel()

	algo := digest.BLAKE3()
	treeID := algo.Sum([]byte("tree"))
	parentID := algo.Sum([]byte("parent"))
	author := object.Signature{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Time:  time.Unix(1566115917, 0).In(time.FixedZone("", -7*3600)),
	}

	commit := object.NewCommit(algo, treeID, author, &object.CommitOptions{
		Message:   "initial commit\n",
		ParentIDs: []digest.Oid{parentID},
	})

	assert.False(t, commit.ID().IsZero())
	assert.Equal(t, author, commit.Committer())
	assert.Equal(t, []digest.Oid{parentID}, commit.ParentIDs())

	parsed, err := object.NewCommitFromObject(commit.ToObject())
	require.NoError(t, err)
	assert.Equal(t, "initial commit\n", parsed.Message())
	assert.Equal(t, treeID.String(), parsed.TreeID().String())
	assert.Equal(t, author.Name, parsed.Author().Name)
	assert.Equal(t, author.Email, parsed.Author().Email)
}

func TestCommitNoParents(t *testing.T) {
	t.Parallel()

	algo := digest.BLAKE3()
	treeID := algo.Sum([]byte("tree"))
	author := object.NewSignature("Ada", "ada@example.com")

	commit := object.NewCommit(algo, treeID, author, &object.CommitOptions{Message: "root"})
	assert.Empty(t, commit.ParentIDs())
}

func TestSignatureRoundTrip(t *testing.T) {
	t.Parallel()

	sig := object.Signature{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Time:  time.Unix(1566115917, 0).In(time.FixedZone("", -7*3600)),
	}
	parsed, err := object.NewSignatureFromBytes([]byte(sig.String()))
	require.NoError(t, err)
	assert.Equal(t, sig.Name, parsed.Name)
	assert.Equal(t, sig.Email, parsed.Email)
	assert.Equal(t, sig.Time.Unix(), parsed.Time.Unix())
}

func TestSignatureFromBytesInvalid(t *testing.T) {
	t.Parallel()

	_, err := object.NewSignatureFromBytes([]byte(""))
	assert.ErrorIs(t, err, object.ErrSignatureInvalid)

	_, err = object.NewSignatureFromBytes([]byte("no angle brackets here"))
	assert.ErrorIs(t, err, object.ErrSignatureInvalid)
}

func TestCommitFromObjectRequiresAuthorAndTree(t *testing.T) {
	t.Parallel()

	algo := digest.BLAKE3()
	o := object.New(algo, object.TypeCommit, []byte("tree "+algo.Sum([]byte("x")).String()+"\n\nmessage"))
	_, err := object.NewCommitFromObject(o)
	assert.ErrorIs(t, err, object.ErrCommitInvalid)
}
