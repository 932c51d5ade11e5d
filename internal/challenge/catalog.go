// Package challenge is the debugging dungeon: a fixed catalog of buggy
// JavaScript snippets that hunters fix to earn Debugging XP.
package challenge

import (
	"math/rand/v2"

	"github.com/sakif/shadow-rank/internal/model"
)

var catalog = []model.Challenge{
	{
		ID:          "off-by-one",
		Title:       "The Off-By-One Error",
		Description: "This function should return the sum of all numbers from 1 to n (inclusive), but something is wrong.",
		BuggyCode: `function sumToN(n) {
  let sum = 0;
  for (let i = 1; i < n; i++) {
    sum += i;
  }
  return sum;
}

// Test: sumToN(5) should return 15 (1+2+3+4+5)
return sumToN(5);`,
		ExpectedOutput: "15",
		Hint:           "Check the loop condition carefully. Should it be < or <=?",
		Difficulty:     model.DifficultyEasy,
		XPReward:       10,
	},
	{
		ID:          "array-mutation",
		Title:       "The Mutating Array",
		Description: "This function should double all numbers in an array without modifying the original array, but it has a bug.",
		BuggyCode: `function doubleArray(arr) {
  const result = arr;
  for (let i = 0; i < result.length; i++) {
    result[i] = result[i] * 2;
  }
  return result;
}

// Test: Should return [2, 4, 6] without modifying original
const original = [1, 2, 3];
const doubled = doubleArray(original);
return original[0] === 1 ? doubled.join(',') : 'MUTATION_ERROR';`,
		ExpectedOutput: "2,4,6",
		Hint:           "Assigning an array to a new variable doesn't copy it. How do you properly clone an array?",
		Difficulty:     model.DifficultyEasy,
		XPReward:       10,
	},
	{
		ID:          "async-await",
		Title:       "The Missing Await",
		Description: "This async function should wait for data to load, but the timing is off.",
		BuggyCode: `async function fetchData() {
  // Simulating an API call
  const getData = () => new Promise(resolve => {
    setTimeout(() => resolve('data loaded'), 100);
  });

  let result = 'initial';

  async function load() {
    result = await getData();
  }

  load();
  return result;
}

// Test: Should return 'data loaded'
return await fetchData();`,
		ExpectedOutput: "data loaded",
		Hint:           "When calling an async function, you might need to wait for it to complete.",
		Difficulty:     model.DifficultyMedium,
		XPReward:       15,
	},
	{
		ID:          "scope-closure",
		Title:       "The Closure Trap",
		Description: "This function creates an array of functions that should return their index, but they all return the same value.",
		BuggyCode: `function createCounters() {
  const counters = [];

  for (var i = 0; i < 3; i++) {
    counters.push(function() {
      return i;
    });
  }

  return counters;
}

// Test: counters[0]() should return 0, counters[1]() should return 1, etc.
const counters = createCounters();
return counters[0]() + ',' + counters[1]() + ',' + counters[2]();`,
		ExpectedOutput: "0,1,2",
		Hint:           "The problem is with variable scoping. Consider the difference between var and let.",
		Difficulty:     model.DifficultyMedium,
		XPReward:       15,
	},
	{
		ID:          "type-coercion",
		Title:       "The Type Confusion",
		Description: "This function should sum numbers from form inputs, but returns an unexpected result.",
		BuggyCode: `function sumInputs(a, b) {
  // Simulating form input values (always strings)
  const input1 = String(a);
  const input2 = String(b);

  return input1 + input2;
}

// Test: sumInputs(10, 20) should return 30
return sumInputs(10, 20);`,
		ExpectedOutput: "30",
		Hint:           "Form inputs are strings. What happens when you use + with strings?",
		Difficulty:     model.DifficultyEasy,
		XPReward:       10,
	},
	{
		ID:          "null-check",
		Title:       "The Null Reference",
		Description: "This function should safely get a nested property, but crashes on null values.",
		BuggyCode: `function getNestedValue(obj, path) {
  const parts = path.split('.');
  let current = obj;

  for (const part of parts) {
    current = current[part];
  }

  return current;
}

// Test: Should return 'default' when path doesn't exist
const data = { user: null };
const result = getNestedValue(data, 'user.name');
return result === undefined || result === null ? 'default' : result;`,
		ExpectedOutput: "default",
		Hint:           "What happens when you try to access a property of null?",
		Difficulty:     model.DifficultyMedium,
		XPReward:       15,
	},
	{
		ID:          "array-filter",
		Title:       "The Truthy Filter",
		Description: "This function should remove all falsy values from an array, but it doesn't work correctly.",
		BuggyCode: `function removeFalsy(arr) {
  return arr.filter(function(item) {
    if (item) {
      return item;
    }
  });
}

// Test: Should return [1, 2, 'hello']
const input = [0, 1, false, 2, '', 'hello', null, undefined];
return removeFalsy(input).join(',');`,
		ExpectedOutput: "1,2,hello",
		Hint:           "The filter callback should return true or false, not the item itself. Or use an even simpler approach.",
		Difficulty:     model.DifficultyEasy,
		XPReward:       10,
	},
	{
		ID:          "object-reference",
		Title:       "The Shared State",
		Description: "This function creates multiple users with default settings, but changes to one affect all.",
		BuggyCode: `function createUsers(names, defaultSettings) {
  return names.map(name => ({
    name: name,
    settings: defaultSettings
  }));
}

// Test: Changing one user's settings shouldn't affect others
const defaults = { theme: 'dark' };
const users = createUsers(['Alice', 'Bob'], defaults);
users[0].settings.theme = 'light';
return users[1].settings.theme;`,
		ExpectedOutput: "dark",
		Hint:           "Objects are passed by reference. Each user should have their own settings object.",
		Difficulty:     model.DifficultyMedium,
		XPReward:       15,
	},
	{
		ID:          "reduce-init",
		Title:       "The Missing Initial Value",
		Description: "This function should count occurrences of each item, but sometimes crashes.",
		BuggyCode: `function countItems(items) {
  return items.reduce((acc, item) => {
    acc[item] = (acc[item] || 0) + 1;
    return acc;
  });
}

// Test: Should return { a: 2, b: 1 }
const result = countItems(['a', 'b', 'a']);
return result.a + ',' + result.b;`,
		ExpectedOutput: "2,1",
		Hint:           "reduce() without an initial value uses the first element. What should the initial value be?",
		Difficulty:     model.DifficultyMedium,
		XPReward:       15,
	},
	{
		ID:          "promise-all",
		Title:       "The Race Condition",
		Description: "This function should process items in parallel and return results in order, but the order is wrong.",
		BuggyCode: `async function processInParallel(items) {
  const results = [];

  items.forEach(async (item) => {
    const result = await new Promise(resolve => {
      setTimeout(() => resolve(item * 2), Math.random() * 100);
    });
    results.push(result);
  });

  return results;
}

// Test: processInParallel([1, 2, 3]) should return [2, 4, 6]
const result = await processInParallel([1, 2, 3]);
return result.length === 3 ? result.join(',') : 'empty';`,
		ExpectedOutput: "2,4,6",
		Hint:           "forEach doesn't wait for async operations. Consider using Promise.all with map.",
		Difficulty:     model.DifficultyHard,
		XPReward:       20,
	},
}

// All returns every challenge in catalog order.
func All() []model.Challenge {
	return append([]model.Challenge(nil), catalog...)
}

// ByID looks up a challenge.
func ByID(id string) (model.Challenge, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return model.Challenge{}, false
}

// Random picks a challenge not in exclude. Once everything has been
// excluded the whole catalog is eligible again. rng may be nil.
func Random(exclude []string, rng *rand.Rand) model.Challenge {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	pool := make([]model.Challenge, 0, len(catalog))
	for _, c := range catalog {
		if !skip[c.ID] {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = catalog
	}

	if rng == nil {
		return pool[rand.IntN(len(pool))]
	}
	return pool[rng.IntN(len(pool))]
}
