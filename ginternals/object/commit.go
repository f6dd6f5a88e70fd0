package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/assembler-0/avc/ginternals/digest"
	"github.com/assembler-0/avc/internal/readutil"
)

// ErrSignatureInvalid is returned when a commit's author/committer
// signature couldn't be parsed.
var ErrSignatureInvalid = errors.New("commit signature is invalid")

// Signature represents the author or committer of a commit, and when
// they made/committed the change.
type Signature struct {
	Time  time.Time
	Name  string
	Email string
}

// String returns the on-disk representation of the signature:
// "name <email> unix_seconds tz_offset".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero returns whether the signature has its zero value.
func (s Signature) IsZero() bool {
	return s.Time.IsZero() && s.Name == "" && s.Email == ""
}

// NewSignature builds a signature for name/email at the current time.
func NewSignature(name, email string) Signature {
	return Signature{Name: name, Email: email, Time: time.Now()}
}

// NewSignatureFromBytes parses a signature out of its on-disk form:
//
//	User Name <user.email@domain.tld> 1566115917 -0700
func NewSignatureFromBytes(b []byte) (Signature, error) {
	sig := Signature{}

	data := readutil.ReadTo(b, '<')
	if len(data) == 0 {
		if len(b) == 0 {
			return sig, fmt.Errorf("couldn't retrieve the name: %w", ErrSignatureInvalid)
		}
		return sig, fmt.Errorf("signature stopped after the name: %w", ErrSignatureInvalid)
	}
	sig.Name = strings.TrimSpace(string(data))
	offset := len(data) + 1 // +1 to skip the "<"
	if offset >= len(b) {
		return sig, fmt.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}

	data = readutil.ReadTo(b[offset:], '>')
	if data == nil {
		return sig, fmt.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}
	sig.Email = string(data)
	offset += len(data) + 2 // +2 to skip the "> "
	if offset >= len(b) {
		return sig, fmt.Errorf("signature stopped after the email: %w", ErrSignatureInvalid)
	}

	timestamp := readutil.ReadTo(b[offset:], ' ')
	if len(timestamp) == 0 {
		return sig, fmt.Errorf("couldn't retrieve the timestamp: %w", ErrSignatureInvalid)
	}
	offset += len(timestamp) + 1 // +1 to skip the " "
	if offset >= len(b) {
		return sig, fmt.Errorf("signature stopped after the timestamp: %w", ErrSignatureInvalid)
	}

	t, err := strconv.ParseInt(string(timestamp), 10, 64)
	if err != nil {
		return sig, fmt.Errorf("invalid timestamp %s: %w", timestamp, err)
	}
	sig.Time = time.Unix(t, 0)

	timezone := b[offset:]
	tz, err := time.Parse("-0700", string(timezone))
	if err != nil {
		return sig, fmt.Errorf("invalid timezone format %s: %w", timezone, err)
	}
	sig.Time = sig.Time.In(tz.Location())
	return sig, nil
}

// CommitOptions holds the optional data used to create a commit.
type CommitOptions struct {
	Message string
	// Committer represents the person creating the commit. If not
	// provided, the author is used as committer.
	Committer Signature
	ParentIDs []digest.Oid
}

// Commit represents a commit object: a tree snapshot, zero or more
// parents, an author, a committer and a message.
type Commit struct {
	rawObject *Object

	author    Signature
	committer Signature

	message string

	parentIDs []digest.Oid
	treeID    digest.Oid
}

// NewCommit creates a new Commit, addressed with algo. Provided digests
// are not validated against any store.
func NewCommit(algo digest.Algo, treeID digest.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentIDs,
	}

	if c.committer.IsZero() {
		c.committer = author
	}
	c.rawObject = c.toObject(algo)

	return c
}

// NewCommitFromObject parses a commit from a raw Object.
func NewCommitFromObject(o *Object) (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, fmt.Errorf("type %s is not a commit: %w", o.typ, ErrObjectInvalid)
	}
	return commitFromContent(o, o.algo)
}

// ID returns the commit's digest.
func (c *Commit) ID() digest.Oid {
	return c.rawObject.ID()
}

// Author returns the Signature of the person that made the changes.
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the Signature of the person that recorded the commit.
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message.
func (c *Commit) Message() string {
	return c.message
}

// ParentIDs returns the digests of the parent commits, if any.
//   - The first commit of an orphan branch has 0 parents.
//   - A regular commit has 1 parent.
//   - A merge commit has 2 or more parents.
func (c *Commit) ParentIDs() []digest.Oid {
	out := make([]digest.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// TreeID returns the digest of the commit's tree.
func (c *Commit) TreeID() digest.Oid {
	return c.treeID
}

// ToObject returns the underlying Object.
func (c *Commit) ToObject() *Object {
	return c.rawObject
}

func (c *Commit) toObject(algo digest.Algo) *Object {
	if c.rawObject != nil {
		return c.rawObject
	}

	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil.
	buf := new(bytes.Buffer)
	buf.WriteString("tree ")
	buf.WriteString(c.treeID.String())
	buf.WriteByte('\n')

	for _, p := range c.parentIDs {
		buf.WriteString("parent ")
		buf.WriteString(p.String())
		buf.WriteByte('\n')
	}

	buf.WriteString("author ")
	buf.WriteString(c.Author().String())
	buf.WriteByte('\n')

	buf.WriteString("committer ")
	buf.WriteString(c.Committer().String())
	buf.WriteByte('\n')

	buf.WriteByte('\n')
	buf.WriteString(c.message)
	return New(algo, TypeCommit, buf.Bytes())
}
