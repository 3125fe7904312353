// Package bottest provides in-memory discord session and bot construction helpers for module tests
package bottest

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const discordEpoch = 1420070400000

// Snowflake returns ID carrying given creation time
func Snowflake(t time.Time, seq int) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpoch)<<22|int64(seq&0xfff), 10)
}

// Overwrite records channel permission overwrite change
type Overwrite struct {
	ChannelID string
	TargetID  string
	Allow     int64
	Deny      int64
}

// Session is in-memory router.Session implementation
type Session struct {
	Channels    map[string]*discordgo.Channel
	Guilds      map[string]*discordgo.Guild
	Members     map[string]*discordgo.Member
	Roles       map[string][]*discordgo.Role
	Messages    map[string][]*discordgo.Message
	Permissions map[string]int64
	Fail        map[string]error

	Sent         []*discordgo.Message
	Deleted      []string
	BulkDeleted  [][]string
	Overwrites   []Overwrite
	Kicked       []string
	Banned       []string
	RolesCreated int
	Latency      time.Duration

	m   sync.Mutex
	seq uint64
}

// NewSession returns empty session
func NewSession() *Session {
	return &Session{
		Channels:    make(map[string]*discordgo.Channel),
		Guilds:      make(map[string]*discordgo.Guild),
		Members:     make(map[string]*discordgo.Member),
		Roles:       make(map[string][]*discordgo.Role),
		Messages:    make(map[string][]*discordgo.Message),
		Permissions: make(map[string]int64),
		Fail:        make(map[string]error),
		seq:         1000,
	}
}

func (s *Session) nextID() string {
	s.seq++

	return strconv.FormatUint(s.seq, 10)
}

func (s *Session) fail(method string) error {
	return s.Fail[method]
}

// AddMember registers guild member
func (s *Session) AddMember(guildID string, user *discordgo.User, roles ...string) *discordgo.Member {
	s.m.Lock()
	defer s.m.Unlock()

	member := &discordgo.Member{
		GuildID: guildID,
		User:    user,
		Roles:   roles,
	}

	s.Members[guildID+"/"+user.ID] = member

	return member
}

// AddChannel registers guild channel
func (s *Session) AddChannel(channel *discordgo.Channel) {
	s.m.Lock()
	defer s.m.Unlock()

	s.Channels[channel.ID] = channel
}

// AddMessages appends messages to channel history, newest first
func (s *Session) AddMessages(channelID string, msgs ...*discordgo.Message) {
	s.m.Lock()
	defer s.m.Unlock()

	s.Messages[channelID] = append(s.Messages[channelID], msgs...)
}

// LastSent returns last sent message or nil
func (s *Session) LastSent() *discordgo.Message {
	s.m.Lock()
	defer s.m.Unlock()

	if len(s.Sent) == 0 {
		return nil
	}

	return s.Sent[len(s.Sent)-1]
}

// SentCount returns number of sent messages
func (s *Session) SentCount() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.Sent)
}

// IsDeleted returns true if message was deleted individually or in bulk
func (s *Session) IsDeleted(id string) bool {
	s.m.Lock()
	defer s.m.Unlock()

	for _, d := range s.Deleted {
		if d == id {
			return true
		}
	}

	for _, b := range s.BulkDeleted {
		for _, d := range b {
			if d == id {
				return true
			}
		}
	}

	return false
}

// DeletedCount returns number of deleted messages, including bulk deletions
func (s *Session) DeletedCount() int {
	s.m.Lock()
	defer s.m.Unlock()

	n := len(s.Deleted)

	for _, b := range s.BulkDeleted {
		n += len(b)
	}

	return n
}

func (s *Session) send(channelID string, msg *discordgo.Message) *discordgo.Message {
	msg.ID = s.nextID()
	msg.ChannelID = channelID

	if ch, ok := s.Channels[channelID]; ok {
		msg.GuildID = ch.GuildID
	}

	s.Sent = append(s.Sent, msg)

	return msg
}

// ChannelMessageSend records sent text message
func (s *Session) ChannelMessageSend(
	channelID, content string,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelMessageSend"); err != nil {
		return nil, err
	}

	return s.send(channelID, &discordgo.Message{Content: content}), nil
}

// ChannelMessageSendEmbed records sent embed message
func (s *Session) ChannelMessageSendEmbed(
	channelID string,
	embed *discordgo.MessageEmbed,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelMessageSendEmbed"); err != nil {
		return nil, err
	}

	return s.send(channelID, &discordgo.Message{Embeds: []*discordgo.MessageEmbed{embed}}), nil
}

func (s *Session) removeMessage(channelID, messageID string) {
	msgs := s.Messages[channelID]

	for i, m := range msgs {
		if m.ID == messageID {
			s.Messages[channelID] = append(msgs[:i:i], msgs[i+1:]...)

			return
		}
	}
}

// ChannelMessageDelete records deleted message
func (s *Session) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelMessageDelete"); err != nil {
		return err
	}

	s.Deleted = append(s.Deleted, messageID)
	s.removeMessage(channelID, messageID)

	return nil
}

// ChannelMessages returns channel history page, newest first
func (s *Session) ChannelMessages(
	channelID string,
	limit int,
	beforeID, _, _ string,
	_ ...discordgo.RequestOption,
) ([]*discordgo.Message, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelMessages"); err != nil {
		return nil, err
	}

	msgs := s.Messages[channelID]

	if beforeID != "" {
		for i, m := range msgs {
			if m.ID == beforeID {
				msgs = msgs[i+1:]

				break
			}
		}
	}

	if len(msgs) > limit {
		msgs = msgs[:limit]
	}

	return append([]*discordgo.Message(nil), msgs...), nil
}

// ChannelMessagesBulkDelete records bulk deletion
func (s *Session) ChannelMessagesBulkDelete(channelID string, messages []string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelMessagesBulkDelete"); err != nil {
		return err
	}

	if len(messages) > 100 {
		return fmt.Errorf("bulk delete of %d messages", len(messages))
	}

	s.BulkDeleted = append(s.BulkDeleted, append([]string(nil), messages...))

	for _, id := range messages {
		s.removeMessage(channelID, id)
	}

	return nil
}

// Channel returns registered channel
func (s *Session) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("Channel"); err != nil {
		return nil, err
	}

	ch, ok := s.Channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}

	return ch, nil
}

// ChannelDelete removes registered channel
func (s *Session) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelDelete"); err != nil {
		return nil, err
	}

	ch, ok := s.Channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}

	delete(s.Channels, channelID)

	return ch, nil
}

// ChannelPermissionSet records overwrite change
func (s *Session) ChannelPermissionSet(
	channelID, targetID string,
	targetType discordgo.PermissionOverwriteType,
	allow, deny int64,
	_ ...discordgo.RequestOption,
) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("ChannelPermissionSet"); err != nil {
		return err
	}

	s.Overwrites = append(s.Overwrites, Overwrite{
		ChannelID: channelID,
		TargetID:  targetID,
		Allow:     allow,
		Deny:      deny,
	})

	if ch, ok := s.Channels[channelID]; ok {
		for _, o := range ch.PermissionOverwrites {
			if o.ID == targetID {
				o.Allow, o.Deny = allow, deny

				return nil
			}
		}

		ch.PermissionOverwrites = append(ch.PermissionOverwrites, &discordgo.PermissionOverwrite{
			ID:    targetID,
			Type:  targetType,
			Allow: allow,
			Deny:  deny,
		})
	}

	return nil
}

// GuildWithCounts returns registered guild
func (s *Session) GuildWithCounts(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildWithCounts"); err != nil {
		return nil, err
	}

	g, ok := s.Guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %s not found", guildID)
	}

	return g, nil
}

// GuildChannels returns registered channels of guild
func (s *Session) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildChannels"); err != nil {
		return nil, err
	}

	var res []*discordgo.Channel

	for _, ch := range s.Channels {
		if ch.GuildID == guildID {
			res = append(res, ch)
		}
	}

	return res, nil
}

// GuildChannelCreateComplex registers new channel
func (s *Session) GuildChannelCreateComplex(
	guildID string,
	data discordgo.GuildChannelCreateData,
	_ ...discordgo.RequestOption,
) (*discordgo.Channel, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildChannelCreateComplex"); err != nil {
		return nil, err
	}

	ch := &discordgo.Channel{
		ID:                   s.nextID(),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		Topic:                data.Topic,
		Position:             data.Position,
		ParentID:             data.ParentID,
		NSFW:                 data.NSFW,
		RateLimitPerUser:     data.RateLimitPerUser,
		PermissionOverwrites: data.PermissionOverwrites,
	}

	s.Channels[ch.ID] = ch

	return ch, nil
}

// GuildMember returns registered member
func (s *Session) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildMember"); err != nil {
		return nil, err
	}

	member, ok := s.Members[guildID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("member %s not found", userID)
	}

	return member, nil
}

// GuildMemberDeleteWithReason records kick
func (s *Session) GuildMemberDeleteWithReason(guildID, userID, _ string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildMemberDeleteWithReason"); err != nil {
		return err
	}

	s.Kicked = append(s.Kicked, userID)
	delete(s.Members, guildID+"/"+userID)

	return nil
}

// GuildBanCreateWithReason records ban
func (s *Session) GuildBanCreateWithReason(
	guildID, userID, _ string,
	_ int,
	_ ...discordgo.RequestOption,
) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildBanCreateWithReason"); err != nil {
		return err
	}

	s.Banned = append(s.Banned, userID)
	delete(s.Members, guildID+"/"+userID)

	return nil
}

// GuildRoles returns registered roles of guild
func (s *Session) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildRoles"); err != nil {
		return nil, err
	}

	return append([]*discordgo.Role(nil), s.Roles[guildID]...), nil
}

// GuildRoleCreate registers new role
func (s *Session) GuildRoleCreate(
	guildID string,
	data *discordgo.RoleParams,
	_ ...discordgo.RequestOption,
) (*discordgo.Role, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildRoleCreate"); err != nil {
		return nil, err
	}

	role := &discordgo.Role{
		ID:   s.nextID(),
		Name: data.Name,
	}

	if data.Permissions != nil {
		role.Permissions = *data.Permissions
	}

	s.Roles[guildID] = append(s.Roles[guildID], role)
	s.RolesCreated++

	return role, nil
}

// GuildMemberRoleAdd assigns role to registered member
func (s *Session) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildMemberRoleAdd"); err != nil {
		return err
	}

	member, ok := s.Members[guildID+"/"+userID]
	if !ok {
		return fmt.Errorf("member %s not found", userID)
	}

	for _, r := range member.Roles {
		if r == roleID {
			return nil
		}
	}

	member.Roles = append(member.Roles, roleID)

	return nil
}

// GuildMemberRoleRemove removes role from registered member
func (s *Session) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("GuildMemberRoleRemove"); err != nil {
		return err
	}

	member, ok := s.Members[guildID+"/"+userID]
	if !ok {
		return fmt.Errorf("member %s not found", userID)
	}

	for i, r := range member.Roles {
		if r == roleID {
			member.Roles = append(member.Roles[:i:i], member.Roles[i+1:]...)

			break
		}
	}

	return nil
}

// UserChannelPermissions returns configured user permissions
func (s *Session) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.fail("UserChannelPermissions"); err != nil {
		return 0, err
	}

	return s.Permissions[userID], nil
}

// HeartbeatLatency returns configured latency
func (s *Session) HeartbeatLatency() time.Duration {
	return s.Latency
}
