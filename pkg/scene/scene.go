// Package scene is an in-process stand-in for the AR renderer. It keeps the
// placed boxes and answers ray picks so terminal and scripted hosts can tap
// objects the same way a headset would.
package scene

import (
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/entrhq/vanish/pkg/experiment"
)

// Scene implements experiment.Renderer. It is safe for concurrent use so a UI
// can read it while the session writes.
type Scene struct {
	mu      sync.RWMutex
	objects map[string]*experiment.TrackedObject
	order   []string
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{objects: make(map[string]*experiment.TrackedObject)}
}

func (s *Scene) PlaceObject(obj experiment.TrackedObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[obj.ID]; !ok {
		s.order = append(s.order, obj.ID)
	}
	s.objects[obj.ID] = &obj
}

func (s *Scene) RemoveObject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
}

func (s *Scene) ApplyMaterial(id string, m experiment.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[id]; ok {
		obj.Material = m
	}
}

func (s *Scene) SetColor(id string, color uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[id]; ok {
		obj.Color = color
	}
}

func (s *Scene) SetLabelVisible(id string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[id]; ok {
		obj.LabelVisible = visible
	}
}

// Object returns a copy of a placed object.
func (s *Scene) Object(id string) (experiment.TrackedObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok {
		return experiment.TrackedObject{}, false
	}
	return *obj, true
}

// Objects returns copies of the placed objects in placement order.
func (s *Scene) Objects() []experiment.TrackedObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]experiment.TrackedObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.objects[id])
	}
	return out
}

// Len returns the number of placed objects.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Ray is a pick ray in world space.
type Ray struct {
	Origin    experiment.Vec3 `yaml:"origin" json:"origin"`
	Direction experiment.Vec3 `yaml:"direction" json:"direction"`
}

// Toward returns the ray from origin through target.
func Toward(origin, target experiment.Vec3) Ray {
	return Ray{Origin: origin, Direction: target.Sub(origin).Normalize()}
}

// Raycast returns the ids of every object the ray enters, nearest first.
// Materials are ignored: deciding whether a hidden object may take the click
// is the session's job.
func (s *Scene) Raycast(r Ray) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		id   string
		dist float64
	}
	var hits []hit
	for _, id := range s.order {
		obj := s.objects[id]
		if d, ok := intersect(r, obj); ok {
			hits = append(hits, hit{id, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// intersect runs the slab test against the object's box and returns the entry
// distance along the ray. The ray is moved into the box's frame first, so
// boxes placed on a rotated anchor are picked along their own axes.
func intersect(r Ray, obj *experiment.TrackedObject) (float64, bool) {
	inv := obj.Orientation.Conjugate()
	r = Ray{
		Origin:    inv.Rotate(r.Origin.Sub(obj.Position)),
		Direction: inv.Rotate(r.Direction),
	}
	hi := obj.Size.Scale(0.5)
	lo := hi.Scale(-1)

	tmin, tmax := math.Inf(-1), math.Inf(1)
	axes := [3][4]float64{
		{r.Origin.X, r.Direction.X, lo.X, hi.X},
		{r.Origin.Y, r.Direction.Y, lo.Y, hi.Y},
		{r.Origin.Z, r.Direction.Z, lo.Z, hi.Z},
	}
	for _, a := range axes {
		o, d, near, far := a[0], a[1], a[2], a[3]
		if d == 0 {
			if o < near || o > far {
				return 0, false
			}
			continue
		}
		t1, t2 := (near-o)/d, (far-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	// Origin inside the box counts as a hit at distance zero.
	return math.Max(tmin, 0), true
}
