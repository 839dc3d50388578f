package domain

// TagChannel is the shared channel Tag activities are published to.
const TagChannel = "designftw"

const (
	TagActivity        = "Tag"
	UnknownCommunity   = "Unknown"
	ContentUnavailable = "Message content not available"
)

// TagRecord associates a free-text label with a message.
// Records are never deduplicated: tagging twice with the same label stores two records.
type TagRecord struct {
	MessageID     string `json:"messageId"`
	Tag           string `json:"tag"`
	CommunityName string `json:"conversationName"`
	Content       string `json:"content,omitempty"`
	Actor         string `json:"actor,omitempty"`
	ChannelID     string `json:"channelId,omitempty"`
	Published     int64  `json:"published,omitempty"`
}

// TagBook groups tag records by the channel they were created in.
type TagBook map[string][]TagRecord

// TaggedMessage is a tag record decorated for display.
type TaggedMessage struct {
	MessageID     string
	Tag           string
	Content       string
	CommunityName string
	Actor         string
	Published     int64
}

// ActivityValue renders the record as the Tag activity shared with other sessions.
func (r TagRecord) ActivityValue() map[string]any {
	return map[string]any{
		"activity":         TagActivity,
		"target":           r.MessageID,
		"tag":              r.Tag,
		"content":          r.Content,
		"conversationName": r.CommunityName,
		"channelId":        r.ChannelID,
		"published":        r.Published,
	}
}

// TagActivitySchema selects Tag activities, optionally narrowed to a target and a label.
func TagActivitySchema(target, tag string) Schema {
	fields := []SchemaField{
		{Name: "activity", Const: TagActivity},
		{Name: "target", Kind: "string"},
		{Name: "tag", Kind: "string"},
	}
	if target != "" {
		fields[1].Const = target
	}
	if tag != "" {
		fields[2].Const = tag
	}
	return NewSchema(fields...)
}

func TagRecordFromObject(o Object) TagRecord {
	return TagRecord{
		MessageID:     stringValue(o.Value["target"]),
		Tag:           stringValue(o.Value["tag"]),
		CommunityName: stringValue(o.Value["conversationName"]),
		Content:       stringValue(o.Value["content"]),
		Actor:         o.Actor,
		ChannelID:     stringValue(o.Value["channelId"]),
		Published:     int64Value(o.Value["published"]),
	}
}
