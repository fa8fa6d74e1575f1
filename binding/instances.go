/*
   Copyright 2023 The python-template Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package binding

import (
	"fmt"
	"sync"
)

// instances holds the objects guests constructed, keyed by handle. The guest
// owns each object until it calls the class destructor.
//
// Handles start at one and are not reused, so zero is never a valid handle.
type instances struct {
	mux  sync.Mutex
	last uint32
	objs map[uint32]instance
}

type instance struct {
	class string
	obj   any
}

func newInstances() *instances {
	return &instances{objs: make(map[uint32]instance)}
}

// add stores obj and returns its handle.
func (t *instances) add(class string, obj any) uint32 {
	t.mux.Lock()
	defer t.mux.Unlock()

	if t.last == ^uint32(0) {
		panic(fmt.Sprintf("binding: out of %s handles", class))
	}
	t.last++
	t.objs[t.last] = instance{class: class, obj: obj}
	return t.last
}

// get returns the object of class for handle. A handle that is unknown or of
// another class is a guest bug, so this panics.
func (t *instances) get(class string, handle uint32) any {
	t.mux.Lock()
	defer t.mux.Unlock()

	return t.lookup(class, handle).obj
}

// remove releases the object of class for handle.
func (t *instances) remove(class string, handle uint32) {
	t.mux.Lock()
	defer t.mux.Unlock()

	t.lookup(class, handle)
	delete(t.objs, handle)
}

// len returns the count of objects not yet released.
func (t *instances) len() int {
	t.mux.Lock()
	defer t.mux.Unlock()

	return len(t.objs)
}

// releaseAll releases every object and returns how many there were. Handles
// handed out before stay unused.
func (t *instances) releaseAll() int {
	t.mux.Lock()
	defer t.mux.Unlock()

	n := len(t.objs)
	clear(t.objs)
	return n
}

// lookup must be called under a lock.
func (t *instances) lookup(class string, handle uint32) instance {
	i, ok := t.objs[handle]
	if !ok {
		panic(fmt.Sprintf("binding: unknown %s handle %d", class, handle))
	}
	if i.class != class {
		panic(fmt.Sprintf("binding: handle %d is a %s, not a %s", handle, i.class, class))
	}
	return i
}
