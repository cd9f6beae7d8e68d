package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inkwell/inkwell/internal/model"
)

func TestNewDocument_GeneratesIDAndTruncatesCreated(t *testing.T) {
	post := &model.BlogPost{
		Author:  model.Author{FirstName: "Barbara", LastName: "Liskov"},
		Title:   "Substitution",
		Content: "Subtypes must be substitutable.",
		Created: time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC),
	}

	doc, err := newDocument(post)
	require.NoError(t, err)

	assert.False(t, doc.ID.IsZero())
	assert.Equal(t, 123000000, doc.Created.Nanosecond())

	applyDocument(post, doc)
	assert.Equal(t, doc.ID.Hex(), post.ID)
	assert.True(t, post.Created.Equal(doc.Created))
}

func TestNewDocument_KeepsValidID(t *testing.T) {
	oid := primitive.NewObjectID()
	post := &model.BlogPost{ID: oid.Hex(), Title: "t", Content: "c"}

	doc, err := newDocument(post)
	require.NoError(t, err)
	assert.Equal(t, oid, doc.ID)
	assert.False(t, doc.Created.IsZero())
}

func TestNewDocument_RejectsForeignID(t *testing.T) {
	_, err := newDocument(&model.BlogPost{ID: "01HXNOTANOBJECTID", Title: "t", Content: "c"})
	assert.Error(t, err)
}

func TestPostDocument_BSONShape(t *testing.T) {
	doc := &postDocument{
		ID:      primitive.NewObjectID(),
		Author:  model.Author{FirstName: "Barbara", LastName: "Liskov"},
		Title:   "Substitution",
		Content: "body",
		Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	document := bson.Raw(raw)
	_, err = document.LookupErr("_id")
	assert.NoError(t, err)
	_, err = document.LookupErr("created")
	assert.NoError(t, err)
	assert.Equal(t, "Barbara", document.Lookup("author", "firstName").StringValue())
	assert.Equal(t, "Liskov", document.Lookup("author", "lastName").StringValue())

	var roundTrip postDocument
	require.NoError(t, bson.Unmarshal(raw, &roundTrip))
	assert.Equal(t, "Barbara Liskov", roundTrip.toModel().AuthorName())
	assert.Equal(t, doc.ID.Hex(), roundTrip.toModel().ID)
}
