package client

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

var (
	// errors
	ErrNoSelection   = errors.New("a class and a section must be selected first")
	ErrNothingStaged = errors.New("no students staged for submission")
	ErrNotEditing    = errors.New("no allotment is being edited")
	ErrEditPending   = errors.New("another allotment is already being edited")
	ErrNotInView     = errors.New("allotment is not in the current view")
)

// Notifier surfaces operation outcomes to the operator, toast-style.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// editState tracks the single row being re-allotted.
type editState struct {
	id        int
	classID   int
	sectionID int
}

// Workspace drives an operator's allotment session: the class/section
// selection, the staged (not yet submitted) students, the persisted view
// filtered to the selection and an ephemeral presentation order.
//
// A Workspace serves a single operator and is not safe for concurrent use;
// SubmitStaged fans its requests out internally.
type Workspace struct {
	api      API
	cache    *Cache
	notifier Notifier

	selectedClass   *school.Class
	selectedSection *school.Section
	staged          []school.Student
	persistedView   []school.AllotmentView
	// localOrder reorders persistedView ids for display only; it is never
	// persisted and resets whenever persistedView changes underneath it.
	localOrder []int
	editing    *editState
}

func NewWorkspace(api API, notifier Notifier) *Workspace {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Workspace{
		api:      api,
		cache:    NewCache(),
		notifier: notifier,
	}
}

// ------------------------------------------------------------------------
// cached queries

func (ws *Workspace) students(ctx context.Context) ([]school.Student, error) {
	v, err := ws.cache.Get(cacheKeyStudents, func() (interface{}, error) { return ws.api.Students(ctx) })
	if err != nil {
		return nil, err
	}
	return v.([]school.Student), nil
}

func (ws *Workspace) Classes(ctx context.Context) ([]school.Class, error) {
	v, err := ws.cache.Get(cacheKeyClasses, func() (interface{}, error) { return ws.api.Classes(ctx) })
	if err != nil {
		return nil, err
	}
	return v.([]school.Class), nil
}

func (ws *Workspace) Sections(ctx context.Context) ([]school.Section, error) {
	v, err := ws.cache.Get(cacheKeySections, func() (interface{}, error) { return ws.api.Sections(ctx) })
	if err != nil {
		return nil, err
	}
	return v.([]school.Section), nil
}

func (ws *Workspace) allotments(ctx context.Context) ([]school.AllotmentView, error) {
	v, err := ws.cache.Get(cacheKeyAllotments, func() (interface{}, error) { return ws.api.Allotments(ctx) })
	if err != nil {
		return nil, err
	}
	return v.([]school.AllotmentView), nil
}

// refreshView recomputes persistedView for the current selection and resets
// the local presentation order to server order. An unset selection yields an
// empty view.
func (ws *Workspace) refreshView(ctx context.Context) error {
	ws.persistedView = nil
	ws.localOrder = nil
	if ws.selectedClass == nil || ws.selectedSection == nil {
		return nil
	}

	views, err := ws.allotments(ctx)
	if err != nil {
		return err
	}
	for _, view := range views {
		if view.ClassID == ws.selectedClass.ID && view.SectionID == ws.selectedSection.ID {
			ws.persistedView = append(ws.persistedView, view)
			ws.localOrder = append(ws.localOrder, view.ID)
		}
	}
	return nil
}

// invalidateAndRefresh re-fetches allotments after a successful mutation.
func (ws *Workspace) invalidateAndRefresh(ctx context.Context) error {
	ws.cache.Invalidate(cacheKeyAllotments)
	return ws.refreshView(ctx)
}

func (ws *Workspace) notifyErr(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		ws.notifier.Error(apiErr.Error())
		return
	}
	ws.notifier.Error(err.Error())
}

// ------------------------------------------------------------------------
// selection & staging

// SelectClass replaces the class selection. Staged students are scoped to
// one class+section context, so changing it discards them.
func (ws *Workspace) SelectClass(ctx context.Context, cls school.Class) error {
	ws.selectedClass = &cls
	ws.staged = nil
	return ws.refreshView(ctx)
}

func (ws *Workspace) SelectSection(ctx context.Context, sec school.Section) error {
	ws.selectedSection = &sec
	ws.staged = nil
	return ws.refreshView(ctx)
}

// ClearFilters resets the selection and the staged list.
func (ws *Workspace) ClearFilters() {
	ws.selectedClass = nil
	ws.selectedSection = nil
	ws.staged = nil
	ws.persistedView = nil
	ws.localOrder = nil
}

// StageStudent appends to the staged list. Already staged students and
// students already allotted under the current selection are skipped.
func (ws *Workspace) StageStudent(std school.Student) {
	for _, staged := range ws.staged {
		if staged.ID == std.ID {
			return
		}
	}
	for _, view := range ws.persistedView {
		if view.StudentID == std.ID {
			return
		}
	}
	ws.staged = append(ws.staged, std)
}

func (ws *Workspace) UnstageStudent(studentID int) {
	for i, staged := range ws.staged {
		if staged.ID == studentID {
			ws.staged = append(ws.staged[:i], ws.staged[i+1:]...)
			return
		}
	}
}

// SubmitStaged creates one allotment per staged student, all in parallel,
// each call succeeding or failing on its own. Once every call has settled it
// reports the success count, clears the staged list regardless of failures
// and re-fetches the persisted view.
func (ws *Workspace) SubmitStaged(ctx context.Context) (int, error) {
	if ws.selectedClass == nil || ws.selectedSection == nil {
		return 0, ErrNoSelection
	}
	if len(ws.staged) == 0 {
		return 0, ErrNothingStaged
	}

	var (
		wg      sync.WaitGroup
		mutex   sync.Mutex
		created int
	)
	for _, std := range ws.staged {
		wg.Add(1)
		go func(std school.Student) {
			defer wg.Done()

			na := school.NewAllotment{
				StudentID: std.ID,
				ClassID:   ws.selectedClass.ID,
				SectionID: ws.selectedSection.ID,
			}
			if _, err := ws.api.CreateAllotment(ctx, na); err != nil {
				return
			}
			mutex.Lock()
			created++
			mutex.Unlock()
		}(std)
	}
	wg.Wait()

	ws.staged = nil
	if err := ws.invalidateAndRefresh(ctx); err != nil {
		ws.notifyErr(err)
	}
	ws.notifier.Success(fmt.Sprintf("%d students allotted successfully", created))
	return created, nil
}

// DirectAllot creates a single allotment immediately, bypassing the staged
// list. The selection must be set.
func (ws *Workspace) DirectAllot(ctx context.Context, std school.Student) error {
	if ws.selectedClass == nil || ws.selectedSection == nil {
		return ErrNoSelection
	}

	na := school.NewAllotment{
		StudentID: std.ID,
		ClassID:   ws.selectedClass.ID,
		SectionID: ws.selectedSection.ID,
	}
	if _, err := ws.api.CreateAllotment(ctx, na); err != nil {
		ws.notifyErr(err)
		return err
	}
	if err := ws.invalidateAndRefresh(ctx); err != nil {
		ws.notifyErr(err)
		return err
	}
	ws.notifier.Success("Allotment created successfully")
	return nil
}

// ------------------------------------------------------------------------
// edit sub-state-machine: idle <-> editing(id, candidate class, candidate section)

// BeginEdit starts editing the given row, seeding the candidate class and
// section from its current values. Only one row may be edited at a time.
func (ws *Workspace) BeginEdit(allotmentID int) error {
	if ws.editing != nil {
		return ErrEditPending
	}
	for _, view := range ws.persistedView {
		if view.ID == allotmentID {
			ws.editing = &editState{id: allotmentID, classID: view.ClassID, sectionID: view.SectionID}
			return nil
		}
	}
	return ErrNotInView
}

func (ws *Workspace) CancelEdit() {
	ws.editing = nil
}

func (ws *Workspace) ChangeEditClass(classID int) error {
	if ws.editing == nil {
		return ErrNotEditing
	}
	ws.editing.classID = classID
	return nil
}

func (ws *Workspace) ChangeEditSection(sectionID int) error {
	if ws.editing == nil {
		return ErrNotEditing
	}
	ws.editing.sectionID = sectionID
	return nil
}

// CommitEdit re-allots the edited row to the candidate class/section. On
// success the workspace returns to idle and the view is re-fetched; on
// failure it stays in editing so the operator can retry or cancel.
func (ws *Workspace) CommitEdit(ctx context.Context) error {
	if ws.editing == nil {
		return ErrNotEditing
	}

	ua := school.UpdateAllotment{
		ClassID:   ws.editing.classID,
		SectionID: ws.editing.sectionID,
	}
	if _, err := ws.api.UpdateAllotment(ctx, ws.editing.id, ua); err != nil {
		ws.notifyErr(err)
		return err
	}

	ws.editing = nil
	if err := ws.invalidateAndRefresh(ctx); err != nil {
		ws.notifyErr(err)
		return err
	}
	ws.notifier.Success("Allotment updated successfully")
	return nil
}

// EditingID reports the row under edit, if any.
func (ws *Workspace) EditingID() (int, bool) {
	if ws.editing == nil {
		return 0, false
	}
	return ws.editing.id, true
}

// ------------------------------------------------------------------------
// deletion & presentation

// RemoveAllotment deletes the row. On failure the row stays visible and the
// operator is notified; local state is untouched.
func (ws *Workspace) RemoveAllotment(ctx context.Context, allotmentID int) error {
	if _, err := ws.api.DeleteAllotment(ctx, allotmentID); err != nil {
		ws.notifyErr(err)
		return err
	}
	if err := ws.invalidateAndRefresh(ctx); err != nil {
		ws.notifyErr(err)
		return err
	}
	ws.notifier.Success("Allotment deleted successfully")
	return nil
}

// ReorderLocal moves fromID immediately before toID in the presentation
// order. It never reaches the server and is lost when the view refreshes.
func (ws *Workspace) ReorderLocal(fromID, toID int) {
	fromIdx, toIdx := -1, -1
	for i, id := range ws.localOrder {
		switch id {
		case fromID:
			fromIdx = i
		case toID:
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 || fromIdx == toIdx {
		return
	}

	ws.localOrder = append(ws.localOrder[:fromIdx], ws.localOrder[fromIdx+1:]...)
	if fromIdx < toIdx {
		toIdx--
	}
	ws.localOrder = append(ws.localOrder[:toIdx], append([]int{fromID}, ws.localOrder[toIdx:]...)...)
}

// View returns the persisted view in the local presentation order.
func (ws *Workspace) View() []school.AllotmentView {
	byID := make(map[int]school.AllotmentView, len(ws.persistedView))
	for _, view := range ws.persistedView {
		byID[view.ID] = view
	}

	views := make([]school.AllotmentView, 0, len(ws.localOrder))
	for _, id := range ws.localOrder {
		if view, ok := byID[id]; ok {
			views = append(views, view)
		}
	}
	return views
}

// StagedStudents returns a copy of the staged list in insertion order.
func (ws *Workspace) StagedStudents() []school.Student {
	staged := make([]school.Student, len(ws.staged))
	copy(staged, ws.staged)
	return staged
}

func (ws *Workspace) SelectedClass() (school.Class, bool) {
	if ws.selectedClass == nil {
		return school.Class{}, false
	}
	return *ws.selectedClass, true
}

func (ws *Workspace) SelectedSection() (school.Section, bool) {
	if ws.selectedSection == nil {
		return school.Section{}, false
	}
	return *ws.selectedSection, true
}

// AvailableStudents is every student not staged and not already allotted
// under the current selection. With no selection it is every student.
func (ws *Workspace) AvailableStudents(ctx context.Context) ([]school.Student, error) {
	students, err := ws.students(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[int]bool, len(ws.staged)+len(ws.persistedView))
	for _, staged := range ws.staged {
		taken[staged.ID] = true
	}
	for _, view := range ws.persistedView {
		taken[view.StudentID] = true
	}

	available := make([]school.Student, 0, len(students))
	for _, std := range students {
		if !taken[std.ID] {
			available = append(available, std)
		}
	}
	return available, nil
}

// SummaryGroup is one (class, section) bucket of the summary panel.
type SummaryGroup struct {
	ClassName   string
	SectionName string
	Allotments  []school.AllotmentView
}

// Summary groups every allotment by (class, section), sorted by class then
// section name. It ignores the current selection.
func (ws *Workspace) Summary(ctx context.Context) ([]SummaryGroup, error) {
	views, err := ws.allotments(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ class, section string }
	grouped := make(map[key][]school.AllotmentView)
	for _, view := range views {
		k := key{class: view.ClassName, section: view.SectionName}
		grouped[k] = append(grouped[k], view)
	}

	groups := make([]SummaryGroup, 0, len(grouped))
	for k, alts := range grouped {
		groups = append(groups, SummaryGroup{ClassName: k.class, SectionName: k.section, Allotments: alts})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].ClassName != groups[j].ClassName {
			return groups[i].ClassName < groups[j].ClassName
		}
		return groups[i].SectionName < groups[j].SectionName
	})
	return groups, nil
}
