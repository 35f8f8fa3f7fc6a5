package database

import (
	"fmt"
	"log"
	"maang_tracker_backend/internal/config"
	"maang_tracker_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate runs the schema migration and seeds the topic taxonomy and the
// canonical problem bank when the tables are empty. Also used by tests
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Topic{},
		&model.Problem{},
		&model.Event{},
		&model.ProblemMastery{},
		&model.TopicCoverage{},
		&model.MasterySnapshot{},
		&model.DailyTask{},
		&model.InterviewSession{},
	)
	if err != nil {
		return err
	}

	if err := seedTopics(db); err != nil {
		return err
	}
	return seedProblems(db)
}

func seedTopics(db *gorm.DB) error {
	var count int64
	db.Model(&model.Topic{}).Count(&count)
	if count > 0 {
		return nil
	}

	for i, t := range DefaultTopics() {
		t.Position = i
		if err := db.Create(&t).Error; err != nil {
			return err
		}
	}
	return nil
}

// DefaultTopics is the pinned taxonomy. TopicID, difficulty and canonical
// problem counts seed every downstream weight; keywords feed the classifier.
func DefaultTopics() []model.Topic {
	return []model.Topic{
		{TopicID: "arrays", Category: model.CategoryArrays, Difficulty: 1, CanonicalProblemCount: 20, Keywords: "array,subarray,matrix,prefix sum"},
		{TopicID: "strings", Category: model.CategoryStrings, Difficulty: 1, CanonicalProblemCount: 15, Keywords: "string,substring,palindrome,anagram"},
		{TopicID: "hashing", Category: model.CategoryHashing, Difficulty: 1, CanonicalProblemCount: 12, Keywords: "hash,map,set,frequency"},
		{TopicID: "behavioral", Category: model.CategoryBehavioral, Difficulty: 1, CanonicalProblemCount: 8, Keywords: "behavioral,star,leadership,conflict"},
		{TopicID: "sorting", Category: model.CategorySorting, Difficulty: 2, CanonicalProblemCount: 10, Keywords: "sort,merge sort,quick sort,bucket"},
		{TopicID: "two-pointers", Category: model.CategoryArrays, Difficulty: 2, CanonicalProblemCount: 12, Keywords: "two pointer,pointers,pair"},
		{TopicID: "sliding-window", Category: model.CategoryArrays, Difficulty: 2, CanonicalProblemCount: 10, Keywords: "window,sliding,longest substring"},
		{TopicID: "linked-list", Category: model.CategoryLinkedList, Difficulty: 2, CanonicalProblemCount: 14, Keywords: "linked list,node,cycle,reverse list"},
		{TopicID: "stack-queue", Category: model.CategoryOther, Difficulty: 2, CanonicalProblemCount: 12, Keywords: "stack,queue,monotonic,parentheses"},
		{TopicID: "binary-search", Category: model.CategoryBinarySearch, Difficulty: 2, CanonicalProblemCount: 12, Keywords: "binary search,rotated,search range"},
		{TopicID: "recursion", Category: model.CategoryRecursion, Difficulty: 3, CanonicalProblemCount: 10, Keywords: "recursion,recursive,divide"},
		{TopicID: "trees", Category: model.CategoryTrees, Difficulty: 3, CanonicalProblemCount: 18, Keywords: "tree,binary tree,traversal,depth"},
		{TopicID: "bst", Category: model.CategoryTrees, Difficulty: 3, CanonicalProblemCount: 10, Keywords: "bst,search tree,inorder"},
		{TopicID: "heaps", Category: model.CategorySorting, Difficulty: 3, CanonicalProblemCount: 8, Keywords: "heap,priority queue,kth largest"},
		{TopicID: "greedy", Category: model.CategoryOther, Difficulty: 3, CanonicalProblemCount: 10, Keywords: "greedy,interval,scheduling"},
		{TopicID: "bit-manipulation", Category: model.CategoryOther, Difficulty: 3, CanonicalProblemCount: 8, Keywords: "bit,xor,mask,binary"},
		{TopicID: "backtracking", Category: model.CategoryRecursion, Difficulty: 4, CanonicalProblemCount: 12, Keywords: "backtracking,permutation,combination,subsets"},
		{TopicID: "graphs", Category: model.CategoryGraphs, Difficulty: 4, CanonicalProblemCount: 16, Keywords: "graph,bfs,dfs,topological,shortest path"},
		{TopicID: "tries", Category: model.CategoryTrees, Difficulty: 4, CanonicalProblemCount: 6, Keywords: "trie,prefix tree,word search"},
		{TopicID: "dynamic-programming", Category: model.CategoryDP, Difficulty: 4, CanonicalProblemCount: 20, Keywords: "dp,dynamic programming,memoization,knapsack"},
		{TopicID: "system-design", Category: model.CategorySystemDesign, Difficulty: 5, CanonicalProblemCount: 10, Keywords: "design,scalability,cache,sharding"},
		{TopicID: model.OtherTopicID, Category: model.CategoryOther, Difficulty: 3, CanonicalProblemCount: 10, Keywords: ""},
	}
}

func seedProblems(db *gorm.DB) error {
	var count int64
	db.Model(&model.Problem{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaults := []model.Problem{
		{ProblemID: "two-sum", Title: "Two Sum", TopicID: "arrays", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "best-time-to-buy-and-sell-stock", Title: "Best Time to Buy and Sell Stock", TopicID: "arrays", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "maximum-subarray", Title: "Maximum Subarray", TopicID: "arrays", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "valid-anagram", Title: "Valid Anagram", TopicID: "strings", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "longest-palindromic-substring", Title: "Longest Palindromic Substring", TopicID: "strings", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "group-anagrams", Title: "Group Anagrams", TopicID: "hashing", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "lru-cache", Title: "LRU Cache", TopicID: "hashing", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "merge-intervals", Title: "Merge Intervals", TopicID: "sorting", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "container-with-most-water", Title: "Container With Most Water", TopicID: "two-pointers", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "longest-substring-without-repeating", Title: "Longest Substring Without Repeating Characters", TopicID: "sliding-window", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "reverse-linked-list", Title: "Reverse Linked List", TopicID: "linked-list", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "linked-list-cycle", Title: "Linked List Cycle", TopicID: "linked-list", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "valid-parentheses", Title: "Valid Parentheses", TopicID: "stack-queue", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "search-in-rotated-sorted-array", Title: "Search in Rotated Sorted Array", TopicID: "binary-search", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "pow-x-n", Title: "Pow(x, n)", TopicID: "recursion", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "binary-tree-inorder-traversal", Title: "Binary Tree Inorder Traversal", TopicID: "trees", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "maximum-depth-of-binary-tree", Title: "Maximum Depth of Binary Tree", TopicID: "trees", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "validate-binary-search-tree", Title: "Validate Binary Search Tree", TopicID: "bst", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "kth-largest-element", Title: "Kth Largest Element in an Array", TopicID: "heaps", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "jump-game", Title: "Jump Game", TopicID: "greedy", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "single-number", Title: "Single Number", TopicID: "bit-manipulation", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "subsets", Title: "Subsets", TopicID: "backtracking", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "number-of-islands", Title: "Number of Islands", TopicID: "graphs", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "course-schedule", Title: "Course Schedule", TopicID: "graphs", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "implement-trie", Title: "Implement Trie (Prefix Tree)", TopicID: "tries", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "climbing-stairs", Title: "Climbing Stairs", TopicID: "dynamic-programming", ExternalDifficulty: model.DifficultyEasy, SourceSite: "leetcode"},
		{ProblemID: "coin-change", Title: "Coin Change", TopicID: "dynamic-programming", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "longest-increasing-subsequence", Title: "Longest Increasing Subsequence", TopicID: "dynamic-programming", ExternalDifficulty: model.DifficultyMedium, SourceSite: "leetcode"},
		{ProblemID: "design-url-shortener", Title: "Design a URL Shortener", TopicID: "system-design", ExternalDifficulty: model.DifficultyMedium, SourceSite: "mock"},
		{ProblemID: "design-rate-limiter", Title: "Design a Rate Limiter", TopicID: "system-design", ExternalDifficulty: model.DifficultyHard, SourceSite: "mock"},
		{ProblemID: "tell-me-about-a-conflict", Title: "Tell Me About a Conflict You Resolved", TopicID: "behavioral", ExternalDifficulty: model.DifficultyMedium, SourceSite: "mock"},
	}

	for _, p := range defaults {
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
