package domain

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestMergeAndSort_Orders_By_Published(t *testing.T) {
	req := require.New(t)
	remote := []Message{
		{URL: "garden:bob:3", Actor: "bob", Content: "third", Published: 3000},
		{URL: "garden:alice:1", Actor: "alice", Content: "first", Published: 1000},
		{URL: "garden:carol:2", Actor: "carol", Content: "second", Published: 2000},
	}

	merged := MergeAndSort(nil, remote)

	req.Equal([]string{"first", "second", "third"}, lo.Map(merged, func(m Message, _ int) string {
		return m.Content
	}))
}

func TestMergeAndSort_Keeps_Arrival_Order_On_Ties(t *testing.T) {
	req := require.New(t)
	remote := []Message{
		{URL: "a", Published: 10},
		{URL: "b", Published: 5},
		{URL: "c", Published: 10},
		{URL: "d", Published: 10},
	}

	merged := MergeAndSort(nil, remote)

	req.Equal([]string{"b", "a", "c", "d"}, lo.Map(merged, func(m Message, _ int) string {
		return m.Key()
	}))
}

func TestMergeAndSort_Placeholders_Win_On_Same_Key(t *testing.T) {
	req := require.New(t)
	placeholders := []Message{{ID: "fake-alice-1", Actor: "alice", Content: "Hey there!"}}
	remote := []Message{
		{URL: "fake-alice-1", Actor: "mallory", Content: "overwritten?", Published: 1},
		{URL: "garden:bob:1", Actor: "bob", Content: "hello", Published: 2},
	}

	merged := MergeAndSort(placeholders, remote)

	req.Len(merged, 2)
	req.Equal("Hey there!", merged[0].Content)
	req.Equal("hello", merged[1].Content)
}

func TestMergeAndSort_Is_Non_Decreasing(t *testing.T) {
	req := require.New(t)
	rnd := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		remote := make([]Message, rnd.Intn(40))
		for i := range remote {
			remote[i] = Message{URL: lo.RandomString(8, lo.LettersCharset), Published: rnd.Int63n(20)}
		}

		merged := MergeAndSort(nil, remote)

		for i := 1; i < len(merged); i++ {
			req.LessOrEqual(merged[i-1].Published, merged[i].Published)
		}
	}
}

func TestMessage_Object_Round_Trip(t *testing.T) {
	req := require.New(t)
	message := Message{Content: "hi", Published: 1700000000000, Edited: true, Lang: "en"}

	// Numbers come back as float64 once they crossed a JSON or protobuf boundary
	value := message.Value()
	value["published"] = float64(1700000000000)
	decoded := MessageFromObject(Object{URL: "garden:alice:1", Actor: "alice", Value: value})

	req.Equal("garden:alice:1", decoded.Key())
	req.Equal("alice", decoded.Actor)
	req.Equal(message.Content, decoded.Content)
	req.Equal(message.Published, decoded.Published)
	req.True(decoded.Edited)
	req.Equal("en", decoded.Lang)
}
