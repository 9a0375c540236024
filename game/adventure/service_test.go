package adventure

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/audit"
	"github.com/kasuganosora/roadquest/game/battle"
	"github.com/kasuganosora/roadquest/game/encounter"
	"github.com/kasuganosora/roadquest/game/item"
	"github.com/kasuganosora/roadquest/game/movement"
	"github.com/kasuganosora/roadquest/game/player"
	"github.com/kasuganosora/roadquest/game/random"
	"github.com/kasuganosora/roadquest/game/skill"
	"github.com/kasuganosora/roadquest/game/stats"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/plugin/hook"
	"github.com/kasuganosora/roadquest/resource"
	"github.com/kasuganosora/roadquest/store"
	"github.com/kasuganosora/roadquest/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recorder) Log(e audit.Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type catalog map[string]*resource.SkillTemplate

func (c catalog) SkillByName(name string) *resource.SkillTemplate { return c[name] }

type fixture struct {
	db      *gorm.DB
	svc     *Service
	repo    *store.CharacterRepo
	battles *player.SessionManager
	audit   *recorder
	hooks   *hook.Center
}

// newFixture builds a service over town_start <-> road_1 <-> town_end, plus
// road_2 which has no spawn table. Every random draw comes from src.
func newFixture(t *testing.T, src random.Source) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)

	items := store.NewMemory[model.Item]("item", []*model.Item{
		{ID: "boots", Name: "Boots", Slot: model.SlotFeet, Agility: 2, Effects: []string{"dice_count_plus1"}},
		{ID: "sword", Name: "Sword", Slot: model.SlotWeapon, Attack: 5},
	})
	monsters := store.NewMemory[model.Monster]("monster", []*model.Monster{
		{ID: "slime", Name: "Slime", HP: 20, MaxHP: 20, Attack: 5, Agility: 12, Accuracy: 70, ExperienceReward: 15, IsActive: true},
	})
	spawns := store.NewMemory[model.SpawnEntry]("spawn", []*model.SpawnEntry{
		{ID: 1, LocationID: "road_1", MonsterID: "slime", SpawnRate: 1.0, IsActive: true},
	})
	locations := store.NewMemory[model.Location]("location", []*model.Location{
		{ID: "town_start", Name: "Start", Kind: model.LocationTown, EndNeighbor: "road_1"},
		{ID: "road_1", Name: "Old Road", Kind: model.LocationRoad, StartNeighbor: "town_start", EndNeighbor: "town_end", Branch: "forest"},
		{ID: "town_end", Name: "End", Kind: model.LocationTown, StartNeighbor: "road_1"},
		{ID: "road_2", Name: "Empty Road", Kind: model.LocationRoad, StartNeighbor: "town_end"},
	})

	repo := store.NewCharacterRepo(db, items, nil)
	battles := player.NewSessionManager(c, time.Minute, nil)
	rec := &recorder{}
	hooks := hook.NewCenter(nil)
	svc, err := New(Config{
		Characters: repo,
		Inventory:  item.NewInventoryService(db, items, nil),
		Locations:  locations,
		SkillCatalog: catalog{
			"sprint": {Name: "sprint", Type: model.SkillMovement, Effects: []string{"dice_count_plus1"}, SPCost: 5, Duration: 2},
		},
		Stats:           stats.NewAggregator(c, time.Minute, nil),
		Skills:          skill.NewLedger(10, nil),
		Movement:        movement.NewEngine(random.NewRoller(src), movement.Spec{}),
		Encounters:      encounter.NewSelector(spawns, monsters, src, nil),
		Battles:         battles,
		Combat:          battle.NewEngine(src, 10, nil),
		Audit:           rec,
		Hooks:           hooks,
		StartLocationID: "town_start",
	})
	require.NoError(t, err)
	return &fixture{db: db, svc: svc, repo: repo, battles: battles, audit: rec, hooks: hooks}
}

func (f *fixture) create(t *testing.T) *model.Character {
	t.Helper()
	c, err := f.svc.CreateCharacter(context.Background(), "Hero")
	require.NoError(t, err)
	return c
}

// failSaves makes every character update fail until the returned func runs.
func (f *fixture) failSaves(t *testing.T) func() {
	t.Helper()
	const name = "test:fail_saves"
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("disk full"))
	}))
	return func() { require.NoError(t, f.db.Callback().Update().Remove(name)) }
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{})
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateCharacter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))

	c := f.create(t)
	assert.NotZero(t, c.ID)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 100, c.HP)
	assert.Equal(t, 50, c.SP)
	assert.Equal(t, "town_start", c.LocationID)

	_, err := f.svc.CreateCharacter(ctx, "Hero")
	assert.True(t, apperr.IsConflict(err))
	_, err = f.svc.CreateCharacter(ctx, "  ")
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.Character(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, f.audit.actions(), audit.ActionCreateCharacter)
}

func TestRollDice_UsesEquipment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(2)) // every die shows 3
	c := f.create(t)

	r, err := f.svc.RollDice(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, r.Values)
	assert.Equal(t, 6, r.Sum)

	inv, err := f.svc.GrantItem(ctx, c.ID, "boots")
	require.NoError(t, err)
	_, err = f.svc.Equip(ctx, c.ID, model.SlotFeet, inv.ID)
	require.NoError(t, err)

	r, err = f.svc.RollDice(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, r.Values, 3)
	assert.Equal(t, 9, r.Sum)
}

func TestMoveAndTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(5)) // every die shows 6
	c := f.create(t)

	_, err := f.svc.Move(ctx, c.ID, 1)
	assert.True(t, apperr.IsInvalidState(err), "towns have no road to walk")

	tr, err := f.svc.Transition(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "road_1", tr.LocationID)
	assert.Equal(t, 0, tr.Position)

	mv, err := f.svc.Move(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, mv.Position)
	assert.Equal(t, movement.BoundaryNone, mv.Boundary)
	assert.Nil(t, mv.Encounter)

	_, err = f.svc.Transition(ctx, c.ID, 1)
	assert.True(t, apperr.IsInvalidState(err), "mid-road")
	_, err = f.svc.Move(ctx, c.ID, 0)
	assert.True(t, apperr.IsValidation(err))

	for i := 0; i < 8; i++ {
		mv, err = f.svc.Move(ctx, c.ID, 1)
		require.NoError(t, err)
		if mv.Encounter != nil {
			break
		}
	}
	assert.Equal(t, 100, mv.Position)
	assert.Equal(t, movement.BoundaryEnd, mv.Boundary)
	require.NotNil(t, mv.Encounter, "end of road rolls the spawn table")
	assert.Equal(t, "slime", mv.Encounter.MonsterID)

	_, err = f.svc.Move(ctx, c.ID, -1)
	assert.True(t, apperr.IsInvalidState(err), "in battle")
	_, err = f.svc.Transition(ctx, c.ID, 1)
	assert.True(t, apperr.IsInvalidState(err), "in battle")

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, saved.Position)
}

func TestMove_FailedSaveStartsNoBattle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0)) // every die shows 1, spawn roll hits
	c := f.create(t)
	_, err := f.svc.Transition(ctx, c.ID, 1)
	require.NoError(t, err)

	loaded, err := f.repo.Load(ctx, c.ID)
	require.NoError(t, err)
	loaded.Position = 99
	require.NoError(t, f.repo.Save(ctx, loaded))

	restore := f.failSaves(t)
	_, err = f.svc.Move(ctx, c.ID, 1)
	require.Error(t, err)
	assert.False(t, f.battles.IsActive(c.ID))
	restore()

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 99, saved.Position)

	mv, err := f.svc.Move(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, mv.Position)
	require.NotNil(t, mv.Encounter)
	assert.True(t, f.battles.IsActive(c.ID))
}

func TestTransition_EntersAtLinkedEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	saved.LocationID = "town_end"
	require.NoError(t, f.repo.Save(ctx, saved))

	tr, err := f.svc.Transition(ctx, c.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, "road_1", tr.LocationID)
	assert.Equal(t, 100, tr.Position)

	_, err = f.svc.Transition(ctx, c.ID, -1)
	assert.True(t, apperr.IsInvalidState(err), "position 100 only leaves toward the end")
}

func TestMove_MidpointReportsBranch(t *testing.T) {
	ctx := context.Background()
	// 6+6+6+6 = 24 then 6+6 ... positions 12, 24, 36, 48; use 1s to reach 50.
	f := newFixture(t, &testutil.FixedSource{Ints: []int{5, 5, 5, 5, 5, 5, 5, 5, 0, 0}})
	c := f.create(t)
	_, err := f.svc.Transition(ctx, c.ID, 1)
	require.NoError(t, err)

	var mv MoveResult
	for i := 0; i < 5; i++ {
		mv, err = f.svc.Move(ctx, c.ID, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 50, mv.Position)
	assert.Equal(t, movement.BoundaryMidpoint, mv.Boundary)
	assert.Equal(t, "forest", mv.Branch)
	assert.Nil(t, mv.Encounter)

	_, err = f.svc.Transition(ctx, c.ID, 1)
	assert.True(t, apperr.IsInvalidState(err), "the midpoint never unlocks a transition")
}

func TestBattle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0)) // every hit lands, escapes succeed
	c := f.create(t)

	sess, err := f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, 1, sess.Turn)

	_, err = f.svc.StartBattle(ctx, c.ID, "road_1")
	assert.True(t, apperr.IsConflict(err))

	res, err := f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	require.NoError(t, err)
	assert.False(t, res.Ended)
	assert.Equal(t, 10, res.Monster.HP)
	assert.Nil(t, res.Rewards)

	res, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	require.NoError(t, err)
	assert.True(t, res.Ended)
	assert.Equal(t, battle.ResultVictory, res.Result)
	require.NotNil(t, res.Rewards)
	assert.Equal(t, 15, res.Rewards.Exp)

	_, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	assert.True(t, apperr.IsInvalidState(err))

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), saved.Exp)
	assert.Equal(t, 99, saved.HP)

	recs, err := f.svc.BattleHistory(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, string(battle.ResultVictory), recs[0].Result)
	assert.Equal(t, sess.ID, recs[0].SessionID)

	last, err := f.svc.Battle(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, last.Settled())

	next, err := f.svc.StartBattle(ctx, c.ID, "")
	require.NoError(t, err)
	assert.Nil(t, next, "no spawn table in town")
	next, err = f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)
	require.NotNil(t, next, "a settled battle is replaced")
	assert.NotEqual(t, sess.ID, next.ID)

	assert.Contains(t, f.audit.actions(), audit.ActionBattleEnd)
}

func TestBattle_SkillExperienceCommitted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)

	_, err := f.svc.LearnSkill(ctx, c.ID, LearnRequest{
		Type: model.SkillMagic, Name: "fireball", Effects: []string{"damage+30"}, SPCost: 5,
	})
	require.NoError(t, err)
	_, err = f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)

	res, err := f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionSkill, Skill: "fireball"})
	require.NoError(t, err)
	assert.Equal(t, battle.ResultVictory, res.Result)
	assert.Equal(t, 10, res.Rewards.SkillExp["fireball"])

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, saved.Skill("fireball").Exp)
	assert.Equal(t, saved.MaxSP-5, saved.SP)
}

func TestBattle_Escape(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)
	_, err := f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)

	res, err := f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionEscape})
	require.NoError(t, err)
	assert.Equal(t, battle.ResultEscaped, res.Result)
	assert.Equal(t, 0, res.Rewards.Exp)

	_, err = f.svc.PerformAction(ctx, 999, battle.Action{Kind: battle.ActionAttack})
	assert.True(t, apperr.IsNotFound(err))
}

func TestPerformAction_NoBattle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)

	_, err := f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	assert.True(t, apperr.IsInvalidState(err))
	_, err = f.svc.Battle(ctx, c.ID)
	assert.True(t, apperr.IsInvalidState(err))
	_, err = f.svc.Battle(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestPerformAction_ExpiredBattle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)
	sess, err := f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)
	require.NotNil(t, sess)

	sess.UpdatedAt = time.Now().Add(-2 * time.Minute)
	assert.Equal(t, []int64{c.ID}, f.svc.ExpireBattles(ctx))

	_, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	assert.True(t, apperr.IsInvalidState(err))

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), saved.Exp)
	assert.Equal(t, saved.MaxHP, saved.HP)
}

func TestPerformAction_CommitRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)
	_, err := f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)
	_, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	require.NoError(t, err)

	restore := f.failSaves(t)
	res, err := f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInternal, apperr.GetCode(err))
	assert.True(t, res.Ended)
	assert.Equal(t, battle.ResultVictory, res.Result)
	assert.NotEmpty(t, res.Log)
	assert.Nil(t, res.Rewards)
	restore()

	res, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	require.NoError(t, err)
	assert.Empty(t, res.Log, "the ended battle is only committed")
	require.NotNil(t, res.Rewards)
	assert.Equal(t, 15, res.Rewards.Exp)

	_, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
	assert.True(t, apperr.IsInvalidState(err))
}

func TestUseSkill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)

	_, err := f.svc.UseSkill(ctx, c.ID, "sprint")
	assert.Equal(t, apperr.CodeNotLearned, apperr.GetCode(err))

	lr, err := f.svc.LearnSkill(ctx, c.ID, LearnRequest{Name: "sprint"})
	require.NoError(t, err)
	assert.True(t, lr.Created)
	assert.Equal(t, model.SkillMovement, lr.Skill.Type)

	again, err := f.svc.LearnSkill(ctx, c.ID, LearnRequest{Name: "sprint"})
	require.NoError(t, err)
	assert.False(t, again.Created)

	before, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	res, err := f.svc.UseSkill(ctx, c.ID, "sprint")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, before.SP-5, res.SPLeft)

	r, err := f.svc.RollDice(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, r.Values, 3, "travel buff adds a die")

	saved, err := f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	saved.SP = 2
	require.NoError(t, f.repo.Save(ctx, saved))
	_, err = f.svc.UseSkill(ctx, c.ID, "sprint")
	assert.True(t, apperr.IsInsufficientResource(err))
	saved, err = f.svc.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.SP)

	_, err = f.svc.SetSkillActive(ctx, c.ID, "sprint", false)
	require.NoError(t, err)
	_, err = f.svc.UseSkill(ctx, c.ID, "sprint")
	assert.Equal(t, apperr.CodeDisabled, apperr.GetCode(err))
}

func TestMove_ConsumesTravelBuff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0)) // dice show 1
	c := f.create(t)
	_, err := f.svc.LearnSkill(ctx, c.ID, LearnRequest{Name: "sprint"})
	require.NoError(t, err)
	_, err = f.svc.UseSkill(ctx, c.ID, "sprint")
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, c.ID, 1)
	require.NoError(t, err)

	sums := []int{}
	for i := 0; i < 3; i++ {
		mv, err := f.svc.Move(ctx, c.ID, 1)
		require.NoError(t, err)
		sums = append(sums, mv.Roll.Sum)
	}
	assert.Equal(t, []int{3, 3, 2}, sums)
}

func TestEquip_RecomputesStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)

	inv, err := f.svc.GrantItem(ctx, c.ID, "sword")
	require.NoError(t, err)
	_, err = f.svc.GrantItem(ctx, c.ID, "nope")
	assert.True(t, apperr.IsNotFound(err))

	comp, err := f.svc.Equip(ctx, c.ID, model.SlotWeapon, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, comp.Total.Attack)

	total, err := f.svc.TotalStats(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, total.Total.Attack)
	assert.Equal(t, 5, total.Equipment.Attack)

	_, err = f.svc.Equip(ctx, c.ID, model.SlotHead, inv.ID)
	assert.Error(t, err)

	comp, err = f.svc.Unequip(ctx, c.ID, model.SlotWeapon)
	require.NoError(t, err)
	assert.Equal(t, 10, comp.Total.Attack)
	_, err = f.svc.Unequip(ctx, c.ID, model.SlotWeapon)
	assert.True(t, apperr.IsNotFound(err))
}

func TestValidateSpawns(t *testing.T) {
	f := newFixture(t, testutil.Always(0))
	warnings, err := f.svc.ValidateSpawns(context.Background())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "road_2", warnings[0].LocationID)
	assert.Equal(t, encounter.WarningDeadLocation, warnings[0].Kind)
}

func TestExpireBattles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)
	_, err := f.svc.StartBattle(ctx, c.ID, "road_1")
	require.NoError(t, err)

	assert.Empty(t, f.svc.ExpireBattles(ctx))
	assert.True(t, f.battles.IsActive(c.ID))
	assert.Equal(t, 1, f.svc.BattleCount())
}

func TestHooks_FireAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Always(0))
	c := f.create(t)

	var events []hook.Event
	var ended ActionResult
	collect := func(_ context.Context, ev hook.Event, p hook.Payload) error {
		assert.Equal(t, c.ID, p.CharID)
		events = append(events, ev)
		if r, ok := p.Data.(ActionResult); ok {
			ended = r
		}
		return nil
	}
	for _, ev := range []hook.Event{hook.AfterMove, hook.AfterTransition, hook.AfterBattleEnd} {
		f.hooks.Register(ev, 0, "test", collect)
	}

	_, err := f.svc.Move(ctx, c.ID, 1)
	require.Error(t, err, "towns have no road to walk")
	assert.Empty(t, events)

	_, err = f.svc.Transition(ctx, c.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.StartBattle(ctx, c.ID, "")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = f.svc.PerformAction(ctx, c.ID, battle.Action{Kind: battle.ActionAttack})
		require.NoError(t, err)
	}

	assert.Equal(t, []hook.Event{hook.AfterTransition, hook.AfterBattleEnd}, events)
	assert.Equal(t, battle.ResultVictory, ended.Result)
	require.NotNil(t, ended.Rewards)
	assert.Equal(t, 15, ended.Rewards.Exp)
}
