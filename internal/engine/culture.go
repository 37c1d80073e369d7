// Cultural emergence engine — clusters citizens by shared belief stance,
// founds movements when a cluster crosses the population threshold, runs
// the movement stage machine, and tracks decaying population trends.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/citizen"
	"github.com/talgya/demiurge/internal/entropy"
	"github.com/talgya/demiurge/internal/society"
	"github.com/talgya/demiurge/internal/tuning"
)

// beliefCluster is a group of citizens sharing a stance direction on one
// topic.
type beliefCluster struct {
	Topic          string
	Pro            bool // stance direction: true = pro cluster
	Members        []*citizen.Citizen
	MeanStance     float64
	MeanConfidence float64
}

// clusterBeliefs groups the population by topic and stance direction.
// Only stances past the cluster gate count; clusters below the minimum
// size are discarded.
func clusterBeliefs(citizens []*citizen.Citizen) []beliefCluster {
	type agg struct {
		members    []*citizen.Citizen
		stanceSum  float64
		confidence float64
	}
	pro := make(map[string]*agg)
	anti := make(map[string]*agg)

	for _, c := range citizens {
		for _, b := range c.Beliefs {
			var bucket map[string]*agg
			switch {
			case b.Stance > tuning.ClusterStanceGate:
				bucket = pro
			case b.Stance < -tuning.ClusterStanceGate:
				bucket = anti
			default:
				continue
			}
			a := bucket[b.Topic]
			if a == nil {
				a = &agg{}
				bucket[b.Topic] = a
			}
			a.members = append(a.members, c)
			a.stanceSum += b.Stance
			a.confidence += b.Confidence
		}
	}

	var out []beliefCluster
	collect := func(bucket map[string]*agg, isPro bool) {
		for topic, a := range bucket {
			if len(a.members) < tuning.ClusterMinSize {
				continue
			}
			out = append(out, beliefCluster{
				Topic:          topic,
				Pro:            isPro,
				Members:        a.members,
				MeanStance:     a.stanceSum / float64(len(a.members)),
				MeanConfidence: a.confidence / float64(len(a.members)),
			})
		}
	}
	collect(pro, true)
	collect(anti, false)

	// Largest first; ties broken by topic for determinism.
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// DetectionResult reports whether a movement emerged and why not if one
// did not.
type DetectionResult struct {
	Detected bool
	Movement *society.CulturalMovement
	Reason   string
}

// DetectEmergingMovement scans belief clusters for one that qualifies as
// a new movement. Topics already claimed by a movement are skipped; the
// first qualifying cluster by descending size founds the movement.
func DetectEmergingMovement(citizens []*citizen.Citizen, existing []*society.CulturalMovement, world *society.World, rnd entropy.Source) DetectionResult {
	if len(citizens) == 0 {
		return DetectionResult{Reason: "no citizens"}
	}

	clusters := clusterBeliefs(citizens)
	if len(clusters) == 0 {
		return DetectionResult{Reason: "no belief clusters"}
	}

	minSize := tuning.ClusterMinSize
	if frac := int(float64(len(citizens)) * tuning.MovementPopFraction); frac > minSize {
		minSize = frac
	}

	for _, cl := range clusters {
		if topicClaimed(existing, cl.Topic) {
			continue
		}
		if len(cl.Members) < minSize {
			continue
		}
		if abs(cl.MeanStance) < tuning.MovementStanceGate {
			continue
		}
		m := foundMovement(cl, world, rnd)
		return DetectionResult{Detected: true, Movement: m}
	}

	return DetectionResult{Reason: "no cluster met size and conviction thresholds"}
}

func topicClaimed(existing []*society.CulturalMovement, topic string) bool {
	for _, m := range existing {
		if m.CoversTopic(topic) {
			return true
		}
	}
	return false
}

func foundMovement(cl beliefCluster, world *society.World, rnd entropy.Source) *society.CulturalMovement {
	founder := cl.Members[0]
	for _, c := range cl.Members[1:] {
		if c.Attributes.SocialInfluence > founder.Attributes.SocialInfluence {
			founder = c
		}
	}

	followerIDs := make([]uuid.UUID, 0, len(cl.Members))
	for _, c := range cl.Members {
		followerIDs = append(followerIDs, c.ID)
	}

	m := &society.CulturalMovement{
		ID:      uuid.New(),
		WorldID: world.ID,
		Name:    movementName(cl, rnd),
		Description: fmt.Sprintf("A movement gathered around a shared conviction about %s.",
			strings.ReplaceAll(cl.Topic, "_", " ")),
		CoreBeliefs: []society.CoreBelief{{Topic: cl.Topic, Stance: cl.MeanStance}},
		Stage:       society.StageNascent,
		FounderID:   founder.ID,
		FollowerIDs: followerIDs,
		Relation:    divineRelationFor(cl.Topic, cl.MeanStance),
		FoundedTick: world.Tick,
	}
	m.LeaderIDs = chooseLeaders(m, cl.Members)
	m.Influence = movementInfluence(m, cl.Members, len(cl.Members), cl.MeanConfidence)
	m.Log(world.Tick, fmt.Sprintf("founded by %s with %d followers", founder.Name, len(cl.Members)))
	return m
}

var namePrefixes = []string{
	"The Way", "The Circle", "The Covenant", "The Children", "The Order", "The Voice",
}

func movementName(cl beliefCluster, rnd entropy.Source) string {
	prefix := namePrefixes[rnd.Intn(len(namePrefixes))]
	topic := titleTopic(cl.Topic)
	if cl.Pro {
		return fmt.Sprintf("%s of %s", prefix, topic)
	}
	return fmt.Sprintf("%s Against %s", prefix, topic)
}

func titleTopic(topic string) string {
	words := strings.Split(strings.ReplaceAll(topic, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// divineTopicKeywords mark a topic as being about the divine.
var divineTopicKeywords = []string{
	"divine", "god", "faith", "sacred", "prayer", "worship", "heaven",
}

func divineRelationFor(topic string, stance float64) society.DivineRelation {
	lower := strings.ToLower(topic)
	for _, kw := range divineTopicKeywords {
		if strings.Contains(lower, kw) {
			if stance > 0 {
				return society.ProDivine
			}
			return society.AntiDivine
		}
	}
	return society.Agnostic
}

// UpdateResult reports the outcome of a movement evaluation tick.
type UpdateResult struct {
	Movement     *society.CulturalMovement
	StageChanged bool
	NewStage     society.MovementStage
}

// UpdateMovement recomputes a movement's followers, influence, leaders,
// and lifecycle stage from the current population. Extinct movements are
// returned untouched: extinction is terminal.
func UpdateMovement(m *society.CulturalMovement, citizens []*citizen.Citizen, world *society.World) UpdateResult {
	if m.Stage == society.StageExtinct {
		return UpdateResult{Movement: m}
	}
	if len(m.CoreBeliefs) == 0 || len(citizens) == 0 {
		return UpdateResult{Movement: m}
	}

	core := m.CoreBeliefs[0]
	var followers []*citizen.Citizen
	var confidenceSum float64
	for _, c := range citizens {
		b := c.BeliefByTopic(core.Topic)
		if b == nil {
			continue
		}
		if !sameSign(b.Stance, core.Stance) || abs(b.Stance) <= tuning.ClusterStanceGate {
			continue
		}
		followers = append(followers, c)
		confidenceSum += b.Confidence
	}

	m.FollowerIDs = m.FollowerIDs[:0]
	for _, c := range followers {
		m.FollowerIDs = append(m.FollowerIDs, c.ID)
	}

	conviction := 0.0
	if len(followers) > 0 {
		conviction = confidenceSum / float64(len(followers))
	}
	m.LeaderIDs = chooseLeaders(m, followers)
	m.Influence = movementInfluence(m, followers, len(citizens), conviction)

	frac := float64(len(followers)) / float64(len(citizens))
	next := nextStage(m.Stage, frac, m.Influence, len(followers))
	if next == m.Stage {
		return UpdateResult{Movement: m}
	}

	m.Stage = next
	m.Log(world.Tick, fmt.Sprintf("stage moved to %s (%d followers, influence %.2f)",
		next, len(followers), m.Influence))
	return UpdateResult{Movement: m, StageChanged: true, NewStage: next}
}

// movementInfluence blends reach (follower fraction) with leadership pull,
// scaled by how convinced the followers actually are.
func movementInfluence(m *society.CulturalMovement, followers []*citizen.Citizen, population int, conviction float64) float64 {
	if population == 0 || len(followers) == 0 {
		return 0
	}
	frac := float64(len(followers)) / float64(population)

	byID := make(map[uuid.UUID]*citizen.Citizen, len(followers))
	for _, c := range followers {
		byID[c.ID] = c
	}
	var leaderSum float64
	var leaderCount int
	for _, id := range m.LeaderIDs {
		if c, ok := byID[id]; ok {
			leaderSum += c.Attributes.SocialInfluence
			leaderCount++
		}
	}
	leaderPull := 0.0
	if leaderCount > 0 {
		leaderPull = leaderSum / float64(leaderCount) * 0.1
	}

	return citizen.Clamp01((frac + leaderPull) * (0.5 + 0.5*conviction))
}

// chooseLeaders keeps still-following incumbents and fills remaining
// seats with the highest-influence followers, capped by movement size.
func chooseLeaders(m *society.CulturalMovement, followers []*citizen.Citizen) []uuid.UUID {
	if len(followers) == 0 {
		return nil
	}
	maxLeaders := (len(followers) + tuning.FollowersPerLeader - 1) / tuning.FollowersPerLeader
	if maxLeaders > tuning.MovementMaxLeaders {
		maxLeaders = tuning.MovementMaxLeaders
	}
	if maxLeaders < 1 {
		maxLeaders = 1
	}

	following := make(map[uuid.UUID]bool, len(followers))
	for _, c := range followers {
		following[c.ID] = true
	}

	var leaders []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, id := range m.LeaderIDs {
		if following[id] && len(leaders) < maxLeaders {
			leaders = append(leaders, id)
			seen[id] = true
		}
	}

	sorted := make([]*citizen.Citizen, len(followers))
	copy(sorted, followers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Attributes.SocialInfluence > sorted[j].Attributes.SocialInfluence
	})
	for _, c := range sorted {
		if len(leaders) >= maxLeaders {
			break
		}
		if !seen[c.ID] {
			leaders = append(leaders, c.ID)
			seen[c.ID] = true
		}
	}
	return leaders
}

// nextStage runs the movement stage machine. frac is the follower share
// of the total population. Extinct never transitions out.
func nextStage(stage society.MovementStage, frac, influence float64, followers int) society.MovementStage {
	switch stage {
	case society.StageNascent:
		if frac > tuning.NascentGrowFrac && influence > tuning.NascentGrowInfluence {
			return society.StageGrowing
		}
	case society.StageGrowing:
		if frac > tuning.GrowingMainstreamFrac && influence > tuning.GrowingMainstreamInfluence {
			return society.StageMainstream
		}
		if frac < tuning.GrowingDeclineFrac {
			return society.StageDeclining
		}
	case society.StageMainstream:
		if frac > tuning.MainstreamDominantFrac && influence > tuning.MainstreamDominantInfluence {
			return society.StageDominant
		}
		if frac < tuning.MainstreamDeclineFrac {
			return society.StageDeclining
		}
	case society.StageDominant:
		if frac < tuning.DominantDeclineFrac {
			return society.StageDeclining
		}
	case society.StageDeclining:
		if followers < tuning.ExtinctionFollowerFloor {
			return society.StageExtinct
		}
		if frac > tuning.DecliningRecoverFrac && influence > tuning.DecliningRecoverInfluence {
			return society.StageGrowing
		}
		if frac < tuning.DecliningUndergroundFrac {
			return society.StageUnderground
		}
	case society.StageUnderground:
		if followers < tuning.ExtinctionFollowerFloor {
			return society.StageExtinct
		}
		if frac > tuning.UndergroundRecoverFrac && influence > tuning.UndergroundRecoverInfluence {
			return society.StageGrowing
		}
	case society.StageExtinct:
		// Terminal. No outgoing transitions.
	}
	return stage
}

// UpdateCulturalTrends refreshes trend strengths from the current belief
// clusters: matched trends track their cluster's share, unmatched trends
// decay and drop, and big untracked clusters spawn new trends.
func UpdateCulturalTrends(trends []society.CulturalTrend, citizens []*citizen.Citizen, tick uint64) []society.CulturalTrend {
	pop := len(citizens)
	clusters := clusterBeliefs(citizens)

	bySize := make(map[string]beliefCluster)
	for _, cl := range clusters {
		// Keep the larger direction per topic.
		if prev, ok := bySize[cl.Topic]; !ok || len(cl.Members) > len(prev.Members) {
			bySize[cl.Topic] = cl
		}
	}

	var out []society.CulturalTrend
	tracked := make(map[string]bool)
	for _, t := range trends {
		tracked[t.Topic] = true
		if cl, ok := bySize[t.Topic]; ok && pop > 0 {
			t.Strength = citizen.Clamp01(float64(len(cl.Members)) / float64(pop))
			t.Participants = len(cl.Members)
			out = append(out, t)
			continue
		}
		t.Strength *= tuning.TrendDecay
		if t.Strength <= tuning.TrendDropFloor {
			continue
		}
		out = append(out, t)
	}

	if pop > 0 {
		for topic, cl := range bySize {
			if tracked[topic] {
				continue
			}
			frac := float64(len(cl.Members)) / float64(pop)
			if frac < tuning.TrendSpawnFrac {
				continue
			}
			out = append(out, society.CulturalTrend{
				Name:         titleTopic(topic),
				Topic:        topic,
				Strength:     citizen.Clamp01(frac),
				Participants: len(cl.Members),
				StartedTick:  tick,
			})
		}
	}

	return out
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
